package models

import (
	"errors"
	"math"
	"strings"
	"time"
)

// CountryCode is a lowercase two-letter country key ("us", "de", "th").
// It is a lookup key only; the empty value means the country is unknown.
type CountryCode string

// Unknown is the zero CountryCode.
const Unknown CountryCode = ""

// isoAliases maps ISO 3166 codes onto the keys used by the lookup tables.
// The bounding-box and regulation tables key the United Kingdom as "uk".
var isoAliases = map[string]CountryCode{
	"gb": "uk",
}

// NormalizeCountry lowercases and trims a code from any locator and maps
// ISO aliases onto table keys. Anything that is not two ASCII letters is Unknown.
func NormalizeCountry(raw string) CountryCode {
	code := strings.ToLower(strings.TrimSpace(raw))
	if len(code) != 2 {
		return Unknown
	}
	for _, r := range code {
		if r < 'a' || r > 'z' {
			return Unknown
		}
	}
	if alias, ok := isoAliases[code]; ok {
		return alias
	}
	return CountryCode(code)
}

func (c CountryCode) String() string { return string(c) }

func (c CountryCode) IsUnknown() bool { return c == Unknown }

// Coordinate is a single device position fix in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the coordinate lies on the globe.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// Source records which step of the chain produced a resolution.
type Source string

const (
	SourceDevice  Source = "device"
	SourceNetwork Source = "network"
	SourceNone    Source = "none"
)

// Resolution is the outcome of a country resolution attempt.
// Country is Unknown exactly when Source is SourceNone.
type Resolution struct {
	Country CountryCode
	Source  Source
}

// Unresolved is the resolution returned when every step failed.
func Unresolved() Resolution {
	return Resolution{Country: Unknown, Source: SourceNone}
}

func (r Resolution) Resolved() bool {
	return r.Source != SourceNone && !r.Country.IsUnknown()
}

// TemplateID identifies a policy template such as "gdpr-compliance".
type TemplateID string

const (
	TemplatePrivacyPolicy       TemplateID = "privacy-policy"
	TemplateGDPR                TemplateID = "gdpr-compliance"
	TemplateCCPA                TemplateID = "ccpa-compliance"
	TemplatePIPEDA              TemplateID = "pipeda-canada"
	TemplatePDPAThailand        TemplateID = "pdpa-thailand"
	TemplatePDPASingapore       TemplateID = "pdpa-singapore"
	TemplatePrivacyActAustralia TemplateID = "privacy-act-australia"
	TemplateLGPD                TemplateID = "lgpd-brazil"
	TemplateCookiePolicy        TemplateID = "cookie-policy"
	TemplateTermsOfService      TemplateID = "terms-of-service"
)

func (t TemplateID) String() string { return string(t) }

// TemplateDefinition is one card of the template catalog.
// An empty Regions list means the template applies everywhere.
type TemplateDefinition struct {
	ID          TemplateID    `json:"id"`
	Label       string        `json:"label"`
	Description string        `json:"description"`
	Icon        string        `json:"icon"`
	Regions     []CountryCode `json:"regions"`
}

// TemplateCard is a catalog entry annotated for one jurisdiction.
type TemplateCard struct {
	TemplateDefinition
	Recommended bool `json:"recommended"`
}

// PositionOptions are handed to a device locator with each request.
type PositionOptions struct {
	Timeout            time.Duration
	EnableHighAccuracy bool
}

// Device and network locator failures. Locators wrap one of these so the
// resolver can label the step failure.
var (
	ErrPermissionDenied    = errors.New("position permission denied")
	ErrPositionTimeout     = errors.New("position timeout")
	ErrPositionUnavailable = errors.New("position unavailable")
	ErrCountryNotFound     = errors.New("country not found for address")
	ErrInvalidAddress      = errors.New("invalid client address")
	ErrLocatorUnavailable  = errors.New("locator unavailable")
)

// FailureReason maps a locator error to a short metric/log label.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, ErrPositionTimeout):
		return "timeout"
	case errors.Is(err, ErrPositionUnavailable):
		return "unavailable"
	case errors.Is(err, ErrCountryNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidAddress):
		return "invalid_address"
	case errors.Is(err, ErrLocatorUnavailable):
		return "locator_unavailable"
	default:
		return "error"
	}
}
