// Package geo maps device coordinates onto countries using a static,
// ordered table of rectangular bounding boxes.
package geo

import (
	"fmt"

	"compliance-panel/internal/jurisdiction/models"
)

// BoundingBox is an axis-aligned rectangle in decimal degrees.
// Bounds are inclusive on all four edges.
type BoundingBox struct {
	Country models.CountryCode
	LatMin  float64
	LatMax  float64
	LonMin  float64
	LonMax  float64
}

// Contains reports whether the coordinate lies inside or on the edge of the box.
func (b BoundingBox) Contains(c models.Coordinate) bool {
	return c.Latitude >= b.LatMin && c.Latitude <= b.LatMax &&
		c.Longitude >= b.LonMin && c.Longitude <= b.LonMax
}

func (b BoundingBox) validate() error {
	switch {
	case models.NormalizeCountry(string(b.Country)) != b.Country || b.Country.IsUnknown():
		return fmt.Errorf("box %q: country key must be a lowercase two-letter code", b.Country)
	case b.LatMin > b.LatMax:
		return fmt.Errorf("box %q: latMin %v > latMax %v", b.Country, b.LatMin, b.LatMax)
	case b.LonMin > b.LonMax:
		return fmt.Errorf("box %q: lonMin %v > lonMax %v", b.Country, b.LonMin, b.LonMax)
	case b.LatMin < -90 || b.LatMax > 90:
		return fmt.Errorf("box %q: latitude out of range", b.Country)
	case b.LonMin < -180 || b.LonMax > 180:
		return fmt.Errorf("box %q: longitude out of range", b.Country)
	}
	return nil
}

// boxes is evaluated in order; the first match wins. Boxes overlap
// (us/ca, de/fr, jp/us latitudes) so the order is part of the contract.
var boxes = []BoundingBox{
	{Country: "us", LatMin: 24, LatMax: 49, LonMin: -125, LonMax: -66},
	{Country: "ca", LatMin: 41, LatMax: 70, LonMin: -141, LonMax: -52},
	{Country: "uk", LatMin: 49, LatMax: 61, LonMin: -8, LonMax: 2},
	{Country: "de", LatMin: 47, LatMax: 55, LonMin: 5, LonMax: 16},
	{Country: "fr", LatMin: 41, LatMax: 51, LonMin: -5, LonMax: 10},
	{Country: "th", LatMin: 5, LatMax: 21, LonMin: 97, LonMax: 106},
	{Country: "sg", LatMin: 1, LatMax: 2, LonMin: 103, LonMax: 104},
	{Country: "au", LatMin: -44, LatMax: -10, LonMin: 113, LonMax: 154},
	{Country: "jp", LatMin: 24, LatMax: 46, LonMin: 123, LonMax: 146},
	{Country: "br", LatMin: -34, LatMax: 5, LonMin: -74, LonMax: -34},
}

func init() {
	if err := validateTable(boxes); err != nil {
		panic("geo: " + err.Error())
	}
}

func validateTable(table []BoundingBox) error {
	for _, b := range table {
		if err := b.validate(); err != nil {
			return err
		}
	}
	return nil
}

// Locate returns the country of the first box containing the coordinate.
// ok is false when the coordinate is off the globe or in no box.
func Locate(c models.Coordinate) (models.CountryCode, bool) {
	if !c.Valid() {
		return models.Unknown, false
	}
	for _, b := range boxes {
		if b.Contains(c) {
			return b.Country, true
		}
	}
	return models.Unknown, false
}

// Boxes returns a copy of the table in evaluation order.
func Boxes() []BoundingBox {
	out := make([]BoundingBox, len(boxes))
	copy(out, boxes)
	return out
}
