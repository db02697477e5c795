package domain

import (
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"

	dErrors "compliance-panel/pkg/domain-errors"
)

// Typed identifiers. Each wraps a UUID so a PolicyID can never be passed where
// a WidgetID is expected. Construct them with the Parse functions at trust
// boundaries, or with New* inside services.
type (
	PolicyID uuid.UUID
	WidgetID uuid.UUID
	ClientID uuid.UUID
)

func NewPolicyID() PolicyID { return PolicyID(uuid.New()) }
func NewWidgetID() WidgetID { return WidgetID(uuid.New()) }
func NewClientID() ClientID { return ClientID(uuid.New()) }

// ParsePolicyID parses external input into a PolicyID.
// Errors carry CodeInvalidInput for empty, malformed, or nil UUIDs.
func ParsePolicyID(s string) (PolicyID, error) {
	u, err := parseUUID(s, "policy id")
	return PolicyID(u), err
}

func ParseWidgetID(s string) (WidgetID, error) {
	u, err := parseUUID(s, "widget id")
	return WidgetID(u), err
}

func ParseClientID(s string) (ClientID, error) {
	u, err := parseUUID(s, "client id")
	return ClientID(u), err
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return u, nil
}

func (id PolicyID) String() string { return uuid.UUID(id).String() }
func (id WidgetID) String() string { return uuid.UUID(id).String() }
func (id ClientID) String() string { return uuid.UUID(id).String() }

func (id PolicyID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id WidgetID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ClientID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id PolicyID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id WidgetID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id ClientID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *PolicyID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *WidgetID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ClientID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

// Value and Scan let sqlx read and write typed IDs directly.
func (id PolicyID) Value() (driver.Value, error) { return uuid.UUID(id).String(), nil }
func (id WidgetID) Value() (driver.Value, error) { return uuid.UUID(id).String(), nil }
func (id ClientID) Value() (driver.Value, error) { return uuid.UUID(id).String(), nil }

func (id *PolicyID) Scan(src any) error { return scanUUID((*uuid.UUID)(id), src) }
func (id *WidgetID) Scan(src any) error { return scanUUID((*uuid.UUID)(id), src) }
func (id *ClientID) Scan(src any) error { return scanUUID((*uuid.UUID)(id), src) }

func scanUUID(dst *uuid.UUID, src any) error {
	if err := dst.Scan(src); err != nil {
		return fmt.Errorf("scan id: %w", err)
	}
	return nil
}
