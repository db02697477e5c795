package models

import (
	dErrors "compliance-panel/pkg/domain-errors"
)

type Type string

const (
	TypeCookieBanner    Type = "cookie-banner"
	TypePrivacyCenter   Type = "privacy-center"
	TypeConsentForm     Type = "consent-form"
	TypeHIPAANotice     Type = "hipaa-privacy-notice"
	TypeCCPANotice      Type = "ccpa-notice"
	TypeFinancialNotice Type = "financial-privacy-notice"
	TypeBiometricNotice Type = "biometric-data-notice"
)

var types = map[Type]struct{}{
	TypeCookieBanner:    {},
	TypePrivacyCenter:   {},
	TypeConsentForm:     {},
	TypeHIPAANotice:     {},
	TypeCCPANotice:      {},
	TypeFinancialNotice: {},
	TypeBiometricNotice: {},
}

func (t Type) IsValid() bool {
	_, ok := types[t]
	return ok
}

type Status string

const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusInactive:
		return true
	}
	return false
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "status must be one of draft, active, inactive")
	}
	return s, nil
}

// DeviceClass buckets impressions by the kind of client that rendered the widget.
type DeviceClass string

const (
	DeviceDesktop DeviceClass = "desktop"
	DeviceMobile  DeviceClass = "mobile"
	DeviceBot     DeviceClass = "bot"
)
