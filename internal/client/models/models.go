package models

import (
	"net/mail"
	"net/url"
	"strings"
	"time"

	jmodels "compliance-panel/internal/jurisdiction/models"
	id "compliance-panel/pkg/domain"
	dErrors "compliance-panel/pkg/domain-errors"
)

const maxNameLength = 200

type Status string

const (
	StatusActive   Status = "active"
	StatusPending  Status = "pending"
	StatusInactive Status = "inactive"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusPending, StatusInactive:
		return true
	}
	return false
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "status must be one of active, pending, inactive")
	}
	return s, nil
}

// Subscription tracks the commercial plan of a client.
type Subscription struct {
	Plan      string     `json:"plan"`
	Status    string     `json:"status"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

// Usage counts what the client has deployed.
type Usage struct {
	Policies int `json:"policies"`
	Widgets  int `json:"widgets"`
}

// Client is an organization the panel manages compliance artifacts for.
//
// Invariants:
//   - Name and Email are non-empty; Email is unique ignoring case
//   - Country is a normalized country key or empty
//   - a subscription end date never precedes its start date
type Client struct {
	ID           id.ClientID         `json:"id"`
	Name         string              `json:"name"`
	Email        string              `json:"email"`
	Website      string              `json:"website"`
	Status       Status              `json:"status"`
	Industry     string              `json:"industry"`
	Country      jmodels.CountryCode `json:"country"`
	CompanySize  string              `json:"company_size"`
	Subscription Subscription        `json:"subscription"`
	Usage        Usage               `json:"usage"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	LastActive   *time.Time          `json:"last_active"`
}

// NewClient constructs a pending client unless status says otherwise.
func NewClient(clientID id.ClientID, req *CreateRequest, now time.Time) (*Client, error) {
	status := StatusPending
	if req.Status != "" {
		status = Status(req.Status)
	}
	c := &Client{
		ID:          clientID,
		Name:        req.Name,
		Email:       req.Email,
		Website:     req.Website,
		Status:      status,
		Industry:    req.Industry,
		Country:     jmodels.NormalizeCountry(req.Country),
		CompanySize: req.CompanySize,
		Subscription: Subscription{
			Plan:      req.Subscription.Plan,
			Status:    req.Subscription.Status,
			StartDate: cloneTime(req.Subscription.StartDate),
			EndDate:   cloneTime(req.Subscription.EndDate),
		},
		CreatedAt:  now,
		UpdatedAt:  now,
		LastActive: &now,
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) validate() error {
	if err := validateName(c.Name); err != nil {
		return err
	}
	if err := validateEmail(c.Email); err != nil {
		return err
	}
	if err := validateWebsite(c.Website); err != nil {
		return err
	}
	if !c.Status.IsValid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "unknown client status "+string(c.Status))
	}
	return c.Subscription.validate()
}

func (s Subscription) validate() error {
	if s.StartDate != nil && s.EndDate != nil && s.EndDate.Before(*s.StartDate) {
		return dErrors.New(dErrors.CodeInvariantViolation, "subscription end date precedes start date")
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "client name is required")
	}
	if len(name) > maxNameLength {
		return dErrors.New(dErrors.CodeInvariantViolation, "client name must be at most 200 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "client email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return dErrors.New(dErrors.CodeInvariantViolation, "client email is invalid")
	}
	return nil
}

func validateWebsite(website string) error {
	if website == "" {
		return nil
	}
	u, err := url.Parse(website)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "client website must be an http(s) URL")
	}
	return nil
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func (c *Client) Clone() *Client {
	out := *c
	out.Subscription.StartDate = cloneTime(c.Subscription.StartDate)
	out.Subscription.EndDate = cloneTime(c.Subscription.EndDate)
	out.LastActive = cloneTime(c.LastActive)
	return &out
}

// EmailKey is the case-insensitive identity used for uniqueness.
func (c *Client) EmailKey() string {
	return strings.ToLower(c.Email)
}

// ApplyUpdate applies a validated partial update and re-checks invariants.
func (c *Client) ApplyUpdate(req *UpdateRequest, now time.Time) error {
	next := c.Clone()
	if req.Name != nil {
		next.Name = *req.Name
	}
	if req.Email != nil {
		next.Email = *req.Email
	}
	if req.Website != nil {
		next.Website = *req.Website
	}
	if req.Status != nil {
		next.Status = Status(*req.Status)
	}
	if req.Industry != nil {
		next.Industry = *req.Industry
	}
	if req.Country != nil {
		next.Country = jmodels.NormalizeCountry(*req.Country)
	}
	if req.CompanySize != nil {
		next.CompanySize = *req.CompanySize
	}
	if req.Subscription != nil {
		next.Subscription = Subscription{
			Plan:      req.Subscription.Plan,
			Status:    req.Subscription.Status,
			StartDate: cloneTime(req.Subscription.StartDate),
			EndDate:   cloneTime(req.Subscription.EndDate),
		}
	}
	if err := next.validate(); err != nil {
		return err
	}
	next.UpdatedAt = now
	*c = *next
	return nil
}

// Activate marks the client and its subscription active.
func (c *Client) Activate(now time.Time) {
	c.Status = StatusActive
	c.Subscription.Status = string(StatusActive)
	c.UpdatedAt = now
}

// Deactivate marks the client and its subscription inactive.
func (c *Client) Deactivate(now time.Time) {
	c.Status = StatusInactive
	c.Subscription.Status = string(StatusInactive)
	c.UpdatedAt = now
}

type Stats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Pending  int `json:"pending"`
	Inactive int `json:"inactive"`
}

// Details is a client with the policy templates its country requires.
type Details struct {
	*Client
	RecommendedTemplates []jmodels.TemplateID `json:"recommended_templates"`
}
