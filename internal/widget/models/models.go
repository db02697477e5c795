package models

import (
	"time"

	id "compliance-panel/pkg/domain"
	dErrors "compliance-panel/pkg/domain-errors"
	pstrings "compliance-panel/pkg/platform/strings"
)

const (
	maxNameLength = 200
	copySuffix    = " (Copy)"
)

// Widget is an embeddable consent or notice component.
//
// Invariants:
//   - Name is non-empty and at most 200 characters
//   - DeployedAt is set once the widget has been activated and survives deactivation
//   - Impressions never decreases
type Widget struct {
	ID          id.WidgetID `json:"id"`
	Name        string      `json:"name"`
	Type        Type        `json:"type"`
	Status      Status      `json:"status"`
	Description string      `json:"description"`
	Platform    string      `json:"platform"`
	Impressions int64       `json:"impressions"`
	Config      Config      `json:"config"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	DeployedAt  *time.Time  `json:"deployed_at"`
}

// NewWidget constructs a draft widget with a normalized config.
func NewWidget(widgetID id.WidgetID, name string, widgetType Type, description, platform string, cfg Config, now time.Time) (*Widget, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if !widgetType.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown widget type "+string(widgetType))
	}
	if platform == "" {
		platform = DefaultPlatform
	}
	if !ValidPlatform(platform) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unsupported platform "+platform)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, dErrors.MessageOf(err))
	}
	return &Widget{
		ID:          widgetID,
		Name:        name,
		Type:        widgetType,
		Status:      StatusDraft,
		Description: description,
		Platform:    platform,
		Config:      cfg,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func validateName(name string) error {
	if name == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "widget name is required")
	}
	if len(name) > maxNameLength {
		return dErrors.New(dErrors.CodeInvariantViolation, "widget name must be at most 200 characters")
	}
	return nil
}

func (w *Widget) IsActive() bool {
	return w.Status == StatusActive
}

func (w *Widget) Clone() *Widget {
	c := *w
	c.Config = w.Config.Clone()
	if w.DeployedAt != nil {
		t := *w.DeployedAt
		c.DeployedAt = &t
	}
	return &c
}

// ApplyUpdate applies a validated partial update.
func (w *Widget) ApplyUpdate(req *UpdateRequest, now time.Time) {
	if req.Name != nil {
		w.Name = *req.Name
	}
	if req.Description != nil {
		w.Description = *req.Description
	}
	if req.Type != nil {
		w.Type = Type(*req.Type)
	}
	if req.Platform != nil {
		w.Platform = *req.Platform
	}
	if req.Config != nil {
		w.Config = req.Config.Clone()
	}
	w.UpdatedAt = now
}

// Toggle flips an active widget to inactive. Any other status activates it.
func (w *Widget) Toggle(now time.Time) {
	if w.Status == StatusActive {
		w.Status = StatusInactive
		w.UpdatedAt = now
		return
	}
	w.activate(now)
}

// Deploy activates the widget and stamps a fresh deployment time.
func (w *Widget) Deploy(now time.Time) {
	w.activate(now)
}

func (w *Widget) activate(now time.Time) {
	w.Status = StatusActive
	w.DeployedAt = &now
	w.UpdatedAt = now
}

// Duplicate returns an undeployed, inactive copy with no impressions.
func (w *Widget) Duplicate(newID id.WidgetID, now time.Time) *Widget {
	c := w.Clone()
	c.ID = newID
	c.Name = pstrings.Truncate(w.Name, maxNameLength-len(copySuffix)) + copySuffix
	c.Status = StatusInactive
	c.Impressions = 0
	c.DeployedAt = nil
	c.CreatedAt = now
	c.UpdatedAt = now
	return c
}

type Stats struct {
	Total       int   `json:"total"`
	Active      int   `json:"active"`
	Draft       int   `json:"draft"`
	Inactive    int   `json:"inactive"`
	Impressions int64 `json:"impressions"`
}

// ImpressionBreakdown counts impressions per device class.
type ImpressionBreakdown map[DeviceClass]int64

// Deployment is the result of deploying a widget: the active widget and the
// token a customer site embeds to load it.
type Deployment struct {
	Widget     *Widget   `json:"widget"`
	EmbedToken string    `json:"embed_token"`
	ExpiresAt  time.Time `json:"expires_at"`
}
