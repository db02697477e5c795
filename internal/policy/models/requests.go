package models

import (
	"strings"

	jmodels "compliance-panel/internal/jurisdiction/models"
	"compliance-panel/internal/jurisdiction/regulation"
	dErrors "compliance-panel/pkg/domain-errors"
)

// FilterAll in any filter field disables that filter.
const FilterAll = "all"

// Filter narrows a policy listing. Zero values match everything.
type Filter struct {
	Status Status
	Type   jmodels.TemplateID
	Search string
}

// NewFilter builds a Filter from query parameters.
func NewFilter(status, templateType, search string) (Filter, error) {
	f := Filter{Search: strings.ToLower(strings.TrimSpace(search))}
	status = strings.ToLower(strings.TrimSpace(status))
	if status != "" && status != FilterAll {
		s, err := ParseStatus(status)
		if err != nil {
			return Filter{}, err
		}
		f.Status = s
	}
	templateType = strings.ToLower(strings.TrimSpace(templateType))
	if templateType != "" && templateType != FilterAll {
		f.Type = jmodels.TemplateID(templateType)
	}
	return f, nil
}

// Matches reports whether p passes the filter. Search is case-insensitive
// over name and description.
func (f Filter) Matches(p *Policy) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Type != "" && p.Type != f.Type {
		return false
	}
	if f.Search != "" &&
		!strings.Contains(strings.ToLower(p.Name), f.Search) &&
		!strings.Contains(strings.ToLower(p.Description), f.Search) {
		return false
	}
	return true
}

type CreateRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Content     string   `json:"content"`
	Regions     []string `json:"regions"`
}

func (r *CreateRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
}

func (r *CreateRequest) Validate() error {
	if r.Name == "" || r.Type == "" {
		return dErrors.New(dErrors.CodeValidation, "policy name and type are required")
	}
	if _, ok := regulation.Lookup(jmodels.TemplateID(r.Type)); !ok {
		return dErrors.New(dErrors.CodeValidation, "unknown policy type "+r.Type)
	}
	return nil
}

// UpdateRequest is a partial update; nil fields are left unchanged.
type UpdateRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Type        *string  `json:"type"`
	Content     *string  `json:"content"`
	Status      *string  `json:"status"`
	Regions     []string `json:"regions"`

	normalizedRegions []string
}

func (r *UpdateRequest) Normalize() {
	trim := func(p *string, lower bool) {
		if p == nil {
			return
		}
		*p = strings.TrimSpace(*p)
		if lower {
			*p = strings.ToLower(*p)
		}
	}
	trim(r.Name, false)
	trim(r.Description, false)
	trim(r.Type, true)
	trim(r.Status, true)
}

func (r *UpdateRequest) Validate() error {
	if r.Name != nil {
		if err := validateName(*r.Name); err != nil {
			return dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
		}
	}
	if r.Type != nil {
		if _, ok := regulation.Lookup(jmodels.TemplateID(*r.Type)); !ok {
			return dErrors.New(dErrors.CodeValidation, "unknown policy type "+*r.Type)
		}
	}
	if r.Content != nil && len(*r.Content) > maxContentLength {
		return dErrors.New(dErrors.CodeValidation, "policy content is too large")
	}
	if r.Status != nil {
		if _, err := ParseStatus(*r.Status); err != nil {
			return err
		}
	}
	if r.Regions != nil {
		regions, err := NormalizeRegions(r.Regions)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
		}
		r.normalizedRegions = regions
	}
	return nil
}
