package models

import (
	"strings"
	"time"

	jmodels "compliance-panel/internal/jurisdiction/models"
	dErrors "compliance-panel/pkg/domain-errors"
)

const FilterAll = "all"

// Filter narrows a client listing. Industry and plan compare ignoring case.
type Filter struct {
	Status   Status
	Industry string
	Plan     string
	Search   string
}

func NewFilter(status, industry, plan, search string) (Filter, error) {
	f := Filter{
		Industry: allToEmpty(industry),
		Plan:     allToEmpty(plan),
		Search:   strings.ToLower(strings.TrimSpace(search)),
	}
	if s := allToEmpty(status); s != "" {
		parsed, err := ParseStatus(strings.ToLower(s))
		if err != nil {
			return Filter{}, err
		}
		f.Status = parsed
	}
	return f, nil
}

func allToEmpty(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, FilterAll) {
		return ""
	}
	return v
}

// Matches reports whether c passes the filter. Search covers name, email
// and website.
func (f Filter) Matches(c *Client) bool {
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.Industry != "" && !strings.EqualFold(c.Industry, f.Industry) {
		return false
	}
	if f.Plan != "" && !strings.EqualFold(c.Subscription.Plan, f.Plan) {
		return false
	}
	if f.Search != "" &&
		!strings.Contains(strings.ToLower(c.Name), f.Search) &&
		!strings.Contains(strings.ToLower(c.Email), f.Search) &&
		!strings.Contains(strings.ToLower(c.Website), f.Search) {
		return false
	}
	return true
}

type SubscriptionRequest struct {
	Plan      string     `json:"plan"`
	Status    string     `json:"status"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

func (r *SubscriptionRequest) normalize() {
	r.Plan = strings.TrimSpace(r.Plan)
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
}

type CreateRequest struct {
	Name         string              `json:"name"`
	Email        string              `json:"email"`
	Website      string              `json:"website"`
	Status       string              `json:"status"`
	Industry     string              `json:"industry"`
	Country      string              `json:"country"`
	CompanySize  string              `json:"company_size"`
	Subscription SubscriptionRequest `json:"subscription"`
}

func (r *CreateRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Website = strings.TrimSpace(r.Website)
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
	r.Industry = strings.TrimSpace(r.Industry)
	r.Country = strings.TrimSpace(r.Country)
	r.CompanySize = strings.TrimSpace(r.CompanySize)
	r.Subscription.normalize()
}

func (r *CreateRequest) Validate() error {
	if r.Name == "" || r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "client name and email are required")
	}
	if r.Status != "" {
		if _, err := ParseStatus(r.Status); err != nil {
			return err
		}
	}
	return validateCountry(r.Country)
}

// validateCountry rejects values that would silently normalize to unknown.
func validateCountry(raw string) error {
	if raw != "" && jmodels.NormalizeCountry(raw).IsUnknown() {
		return dErrors.New(dErrors.CodeValidation, "country must be a two-letter country code")
	}
	return nil
}

// UpdateRequest is a partial update. A present subscription replaces the
// stored one entirely.
type UpdateRequest struct {
	Name         *string              `json:"name"`
	Email        *string              `json:"email"`
	Website      *string              `json:"website"`
	Status       *string              `json:"status"`
	Industry     *string              `json:"industry"`
	Country      *string              `json:"country"`
	CompanySize  *string              `json:"company_size"`
	Subscription *SubscriptionRequest `json:"subscription"`
}

func (r *UpdateRequest) Normalize() {
	for _, p := range []*string{r.Name, r.Email, r.Website, r.Industry, r.Country, r.CompanySize} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
	if r.Status != nil {
		*r.Status = strings.ToLower(strings.TrimSpace(*r.Status))
	}
	if r.Subscription != nil {
		r.Subscription.normalize()
	}
}

func (r *UpdateRequest) Validate() error {
	if r.Name != nil && *r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "client name cannot be empty")
	}
	if r.Email != nil && *r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "client email cannot be empty")
	}
	if r.Status != nil {
		if _, err := ParseStatus(*r.Status); err != nil {
			return err
		}
	}
	if r.Country != nil {
		return validateCountry(*r.Country)
	}
	return nil
}
