package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-panel/internal/jurisdiction/models"
)

func TestLocate(t *testing.T) {
	tests := []struct {
		name  string
		coord models.Coordinate
		want  models.CountryCode
		found bool
	}{
		{"Berlin", models.Coordinate{Latitude: 52.52, Longitude: 13.405}, "de", true},
		{"Bangkok", models.Coordinate{Latitude: 13.7563, Longitude: 100.5018}, "th", true},
		{"Sydney", models.Coordinate{Latitude: -33.87, Longitude: 151.21}, "au", true},
		{"Sao Paulo", models.Coordinate{Latitude: -23.55, Longitude: -46.63}, "br", true},
		{"Singapore", models.Coordinate{Latitude: 1.35, Longitude: 103.82}, "sg", true},
		{"Tokyo", models.Coordinate{Latitude: 35.68, Longitude: 139.69}, "jp", true},
		{"London", models.Coordinate{Latitude: 51.5, Longitude: -0.12}, "uk", true},
		// Paris sits below the uk box and west of the de box.
		{"Paris", models.Coordinate{Latitude: 48.85, Longitude: 2.35}, "fr", true},
		// us precedes ca in the table; Detroit is inside both.
		{"Detroit", models.Coordinate{Latitude: 42.33, Longitude: -83.05}, "us", true},
		{"Vancouver above us box", models.Coordinate{Latitude: 49.28, Longitude: -123.12}, "ca", true},
		{"mid Atlantic", models.Coordinate{Latitude: 30, Longitude: -40}, models.Unknown, false},
		{"Antarctica", models.Coordinate{Latitude: -80, Longitude: 0}, models.Unknown, false},
		{"off the globe", models.Coordinate{Latitude: 120, Longitude: 13}, models.Unknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Locate(tt.coord)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocateInclusiveBounds(t *testing.T) {
	for _, b := range Boxes() {
		corners := []models.Coordinate{
			{Latitude: b.LatMin, Longitude: b.LonMin},
			{Latitude: b.LatMax, Longitude: b.LonMax},
		}
		for _, c := range corners {
			got, ok := Locate(c)
			require.True(t, ok, "corner %+v of %s", c, b.Country)
			// An earlier box may own a shared corner; it must never be a later one.
			assert.LessOrEqual(t, indexOf(got), indexOf(b.Country))
		}
	}
}

func TestLocateFirstMatchWins(t *testing.T) {
	for _, b := range Boxes() {
		center := models.Coordinate{
			Latitude:  (b.LatMin + b.LatMax) / 2,
			Longitude: (b.LonMin + b.LonMax) / 2,
		}
		got, ok := Locate(center)
		require.True(t, ok)
		for _, earlier := range Boxes()[:indexOf(b.Country)] {
			if earlier.Contains(center) {
				assert.Equal(t, earlier.Country, got)
				break
			}
		}
	}
}

func TestValidateTable(t *testing.T) {
	assert.NoError(t, validateTable(boxes))

	bad := []struct {
		name string
		box  BoundingBox
	}{
		{"inverted latitude", BoundingBox{Country: "xx", LatMin: 10, LatMax: 5, LonMin: 0, LonMax: 1}},
		{"inverted longitude", BoundingBox{Country: "xx", LatMin: 0, LatMax: 1, LonMin: 5, LonMax: 1}},
		{"latitude out of range", BoundingBox{Country: "xx", LatMin: -91, LatMax: 1, LonMin: 0, LonMax: 1}},
		{"longitude out of range", BoundingBox{Country: "xx", LatMin: 0, LatMax: 1, LonMin: 0, LonMax: 181}},
		{"uppercase key", BoundingBox{Country: "XX", LatMin: 0, LatMax: 1, LonMin: 0, LonMax: 1}},
		{"empty key", BoundingBox{LatMin: 0, LatMax: 1, LonMin: 0, LonMax: 1}},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, validateTable([]BoundingBox{tt.box}))
		})
	}
}

func TestBoxesReturnsCopy(t *testing.T) {
	got := Boxes()
	got[0].Country = "zz"
	assert.Equal(t, models.CountryCode("us"), Boxes()[0].Country)
}

func indexOf(code models.CountryCode) int {
	for i, b := range boxes {
		if b.Country == code {
			return i
		}
	}
	return -1
}
