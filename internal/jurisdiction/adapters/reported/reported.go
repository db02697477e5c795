// Package reported adapts a position the visitor's browser already obtained
// into a DeviceLocator. The browser runs the geolocation prompt; the server
// only sees the fix or the sensor error code it reported.
package reported

import (
	"context"
	"fmt"

	"compliance-panel/internal/jurisdiction/models"
)

// Sensor error codes as reported by the browser geolocation API.
const (
	SensorPermissionDenied = "permission_denied"
	SensorTimeout          = "timeout"
	SensorUnavailable      = "unavailable"
)

// Report is what the visitor's client posted.
type Report struct {
	Coordinates *models.Coordinate
	SensorError string
}

// Empty reports whether the client sent neither a fix nor an error.
func (r Report) Empty() bool {
	return r.Coordinates == nil && r.SensorError == ""
}

// Device replays a Report as a device position.
type Device struct {
	report Report
}

// New returns nil when the report is empty so callers can skip the device step.
func New(report Report) *Device {
	if report.Empty() {
		return nil
	}
	return &Device{report: report}
}

// CurrentPosition returns the reported fix, or the reported sensor error
// mapped onto the locator error kinds.
func (d *Device) CurrentPosition(ctx context.Context, _ models.PositionOptions) (models.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return models.Coordinate{}, err
	}
	if d.report.SensorError != "" {
		return models.Coordinate{}, sensorError(d.report.SensorError)
	}
	if d.report.Coordinates == nil {
		return models.Coordinate{}, models.ErrPositionUnavailable
	}
	return *d.report.Coordinates, nil
}

func sensorError(code string) error {
	switch code {
	case SensorPermissionDenied:
		return models.ErrPermissionDenied
	case SensorTimeout:
		return models.ErrPositionTimeout
	case SensorUnavailable:
		return models.ErrPositionUnavailable
	default:
		return fmt.Errorf("sensor error %q: %w", code, models.ErrPositionUnavailable)
	}
}

// ValidSensorError reports whether code is one of the known sensor codes.
func ValidSensorError(code string) bool {
	switch code {
	case SensorPermissionDenied, SensorTimeout, SensorUnavailable:
		return true
	}
	return false
}
