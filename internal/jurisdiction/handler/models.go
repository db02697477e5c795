package handler

import (
	"strings"

	"compliance-panel/internal/jurisdiction/adapters/reported"
	"compliance-panel/internal/jurisdiction/models"
	dErrors "compliance-panel/pkg/domain-errors"
)

// ResolveRequest carries what the visitor's browser learned from its
// geolocation prompt. Both fields are optional; an empty body resolves
// from the client address alone.
type ResolveRequest struct {
	Coordinates *models.Coordinate `json:"coordinates,omitempty"`
	SensorError string             `json:"sensor_error,omitempty"`
}

func (r *ResolveRequest) Normalize() {
	r.SensorError = strings.ToLower(strings.TrimSpace(r.SensorError))
}

func (r *ResolveRequest) Validate() error {
	if r.SensorError != "" && !reported.ValidSensorError(r.SensorError) {
		return dErrors.New(dErrors.CodeValidation, "sensor_error must be one of permission_denied, timeout, unavailable")
	}
	if r.Coordinates != nil && !r.Coordinates.Valid() {
		return dErrors.New(dErrors.CodeValidation, "coordinates out of range")
	}
	return nil
}

func (r *ResolveRequest) report() reported.Report {
	return reported.Report{Coordinates: r.Coordinates, SensorError: r.SensorError}
}

// ResolveResponse reports the resolved country, or null when unknown.
type ResolveResponse struct {
	Country     *string             `json:"country"`
	Source      models.Source       `json:"source"`
	Recommended []models.TemplateID `json:"recommended"`
}

type RecommendationsResponse struct {
	Country     *string             `json:"country"`
	Recommended []models.TemplateID `json:"recommended"`
}

type TemplatesResponse struct {
	Country   *string               `json:"country"`
	Templates []models.TemplateCard `json:"templates"`
}

func countryOrNull(c models.CountryCode) *string {
	if c.IsUnknown() {
		return nil
	}
	s := c.String()
	return &s
}
