package models

import (
	"strings"

	dErrors "compliance-panel/pkg/domain-errors"
)

const FilterAll = "all"

type Filter struct {
	Status Status
	Type   Type
	Search string
}

func NewFilter(status, widgetType, search string) (Filter, error) {
	f := Filter{Search: strings.ToLower(strings.TrimSpace(search))}
	status = strings.ToLower(strings.TrimSpace(status))
	if status != "" && status != FilterAll {
		s, err := ParseStatus(status)
		if err != nil {
			return Filter{}, err
		}
		f.Status = s
	}
	widgetType = strings.ToLower(strings.TrimSpace(widgetType))
	if widgetType != "" && widgetType != FilterAll {
		f.Type = Type(widgetType)
	}
	return f, nil
}

func (f Filter) Matches(w *Widget) bool {
	if f.Status != "" && w.Status != f.Status {
		return false
	}
	if f.Type != "" && w.Type != f.Type {
		return false
	}
	if f.Search != "" &&
		!strings.Contains(strings.ToLower(w.Name), f.Search) &&
		!strings.Contains(strings.ToLower(w.Description), f.Search) {
		return false
	}
	return true
}

type CreateRequest struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Platform    string `json:"platform"`
	Config      Config `json:"config"`
}

func (r *CreateRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
	r.Platform = strings.ToLower(strings.TrimSpace(r.Platform))
	r.Config.Normalize()
}

func (r *CreateRequest) Validate() error {
	if r.Name == "" || r.Type == "" {
		return dErrors.New(dErrors.CodeValidation, "widget name and type are required")
	}
	if !Type(r.Type).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unknown widget type "+r.Type)
	}
	if r.Platform != "" && !ValidPlatform(r.Platform) {
		return dErrors.New(dErrors.CodeValidation, "unsupported platform "+r.Platform)
	}
	return r.Config.Validate()
}

// UpdateRequest is a partial update. Status changes go through toggle and deploy.
type UpdateRequest struct {
	Name        *string `json:"name"`
	Type        *string `json:"type"`
	Description *string `json:"description"`
	Platform    *string `json:"platform"`
	Config      *Config `json:"config"`
}

func (r *UpdateRequest) Normalize() {
	if r.Name != nil {
		*r.Name = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		*r.Description = strings.TrimSpace(*r.Description)
	}
	if r.Type != nil {
		*r.Type = strings.ToLower(strings.TrimSpace(*r.Type))
	}
	if r.Platform != nil {
		*r.Platform = strings.ToLower(strings.TrimSpace(*r.Platform))
	}
	if r.Config != nil {
		r.Config.Normalize()
	}
}

func (r *UpdateRequest) Validate() error {
	if r.Name != nil {
		if err := validateName(*r.Name); err != nil {
			return dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
		}
	}
	if r.Type != nil && !Type(*r.Type).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unknown widget type "+*r.Type)
	}
	if r.Platform != nil && !ValidPlatform(*r.Platform) {
		return dErrors.New(dErrors.CodeValidation, "unsupported platform "+*r.Platform)
	}
	if r.Config != nil {
		return r.Config.Validate()
	}
	return nil
}
