package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"maps"
	"strings"

	dErrors "compliance-panel/pkg/domain-errors"
)

const (
	DefaultTheme     = "light"
	DefaultPosition  = "bottom-right"
	DefaultSize      = "medium"
	DefaultAnimation = "slide-up"
	DefaultPlatform  = "web"
	maxButtonText    = 60
	maxExtras        = 32
)

var (
	themes     = set("light", "dark", "auto")
	positions  = set("top-left", "top-right", "bottom-left", "bottom-right", "center", "top-banner", "bottom-banner", "bottom", "modal", "inline")
	sizes      = set("small", "medium", "large")
	animations = set("none", "fade-in", "slide-up", "slide-down", "scale-in")
	platforms  = set("web", "wordpress", "shopify", "wix", "squarespace")
)

func set(values ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}

// Config controls how an embedded widget renders. It is stored as JSONB.
type Config struct {
	Theme               string `json:"theme"`
	Position            string `json:"position"`
	Size                string `json:"size"`
	Animation           string `json:"animation"`
	ShowRejectButton    bool   `json:"show_reject_button"`
	AcceptButtonText    string `json:"accept_button_text,omitempty"`
	RejectButtonText    string `json:"reject_button_text,omitempty"`
	CustomizeButtonText string `json:"customize_button_text,omitempty"`
	// Extras holds type-specific settings such as entity_name or effective_date.
	Extras map[string]any `json:"extras,omitempty"`
}

// Normalize lowercases enum fields and fills in defaults.
func (c *Config) Normalize() {
	c.Theme = orDefault(c.Theme, DefaultTheme)
	c.Position = orDefault(c.Position, DefaultPosition)
	c.Size = orDefault(c.Size, DefaultSize)
	c.Animation = orDefault(c.Animation, DefaultAnimation)
	c.AcceptButtonText = strings.TrimSpace(c.AcceptButtonText)
	c.RejectButtonText = strings.TrimSpace(c.RejectButtonText)
	c.CustomizeButtonText = strings.TrimSpace(c.CustomizeButtonText)
}

func orDefault(v, def string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return def
	}
	return v
}

func (c Config) Validate() error {
	checks := []struct {
		field   string
		value   string
		allowed map[string]struct{}
	}{
		{"theme", c.Theme, themes},
		{"position", c.Position, positions},
		{"size", c.Size, sizes},
		{"animation", c.Animation, animations},
	}
	for _, chk := range checks {
		if _, ok := chk.allowed[chk.value]; !ok {
			return dErrors.New(dErrors.CodeValidation, "unsupported widget "+chk.field+" "+chk.value)
		}
	}
	for _, text := range []string{c.AcceptButtonText, c.RejectButtonText, c.CustomizeButtonText} {
		if len(text) > maxButtonText {
			return dErrors.New(dErrors.CodeValidation, "button text is too long")
		}
	}
	if len(c.Extras) > maxExtras {
		return dErrors.New(dErrors.CodeValidation, "too many extra settings")
	}
	return nil
}

func (c Config) Clone() Config {
	c.Extras = maps.Clone(c.Extras)
	return c
}

func (c Config) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *Config) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case nil:
		*c = Config{}
		return nil
	default:
		return errors.New("widget config: unsupported scan type")
	}
	return json.Unmarshal(raw, c)
}

// ValidPlatform reports whether p is a supported embed target.
func ValidPlatform(p string) bool {
	_, ok := platforms[p]
	return ok
}
