package models

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"

	jmodels "compliance-panel/internal/jurisdiction/models"
	"compliance-panel/internal/jurisdiction/regulation"
	id "compliance-panel/pkg/domain"
	dErrors "compliance-panel/pkg/domain-errors"
	pstrings "compliance-panel/pkg/platform/strings"
)

const (
	maxNameLength    = 200
	maxContentLength = 512 << 10
	copySuffix       = " (Copy)"
)

// Policy is a versioned legal document built from a catalog template.
//
// Invariants:
//   - Name is non-empty and at most 200 characters
//   - Type is a template id from the catalog
//   - Version starts at 1 and grows by one on every content or status change
//   - PublishedAt is set exactly when the policy has been published at least once
//     since it was created or duplicated
//   - Regions holds lowercase country keys, deduplicated
type Policy struct {
	ID          id.PolicyID        `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Type        jmodels.TemplateID `json:"type"`
	Content     string             `json:"content"`
	Status      Status             `json:"status"`
	Version     int                `json:"version"`
	Regions     []string           `json:"regions"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	PublishedAt *time.Time         `json:"published_at"`
}

// NewPolicy constructs a draft at version 1. Empty regions default to the
// regions of the template.
func NewPolicy(policyID id.PolicyID, name, description string, templateID jmodels.TemplateID, content string, regions []string, now time.Time) (*Policy, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	def, ok := regulation.Lookup(templateID)
	if !ok {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown policy type "+string(templateID))
	}
	if len(content) > maxContentLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "policy content is too large")
	}
	normalized, err := NormalizeRegions(regions)
	if err != nil {
		return nil, err
	}
	if len(normalized) == 0 {
		for _, r := range def.Regions {
			normalized = append(normalized, r.String())
		}
	}
	return &Policy{
		ID:          policyID,
		Name:        name,
		Description: description,
		Type:        templateID,
		Content:     content,
		Status:      StatusDraft,
		Version:     1,
		Regions:     normalized,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func validateName(name string) error {
	if name == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "policy name cannot be empty")
	}
	if len(name) > maxNameLength {
		return dErrors.New(dErrors.CodeInvariantViolation, "policy name must be 200 characters or less")
	}
	return nil
}

// NormalizeRegions lowercases, trims and deduplicates country keys and
// rejects anything that is not a two-letter code.
func NormalizeRegions(regions []string) ([]string, error) {
	out := pstrings.DedupeAndTrimLower(regions)
	for i, r := range out {
		code := jmodels.NormalizeCountry(r)
		if code.IsUnknown() {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid region "+r)
		}
		out[i] = code.String()
	}
	return lo.Uniq(out), nil
}

func (p *Policy) IsPublished() bool {
	return p.Status == StatusActive && p.PublishedAt != nil
}

// Clone returns a deep copy so stores never hand out shared state.
func (p *Policy) Clone() *Policy {
	c := *p
	c.Regions = slices.Clone(p.Regions)
	if p.PublishedAt != nil {
		t := *p.PublishedAt
		c.PublishedAt = &t
	}
	return &c
}

// ApplyUpdate applies a partial update and bumps the version.
// Call Validate on the request first.
func (p *Policy) ApplyUpdate(req *UpdateRequest, now time.Time) {
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Type != nil {
		p.Type = jmodels.TemplateID(*req.Type)
	}
	if req.Content != nil {
		p.Content = *req.Content
	}
	if req.Status != nil {
		p.Status = Status(*req.Status)
	}
	if req.Regions != nil {
		p.Regions = req.normalizedRegions
	}
	p.Version++
	p.UpdatedAt = now
}

// CanUpdate rejects updates that would activate the policy. Activation goes
// through Publish so its checks run and published_at is stamped.
func (p *Policy) CanUpdate(req *UpdateRequest) error {
	if req.Status != nil && Status(*req.Status) == StatusActive && p.Status != StatusActive {
		return dErrors.New(dErrors.CodeInvariantViolation, "policies are activated by publishing")
	}
	return nil
}

// CanPublish reports whether the policy may be published.
// Archived policies must be restored to draft first.
func (p *Policy) CanPublish() error {
	if p.Status == StatusArchived {
		return dErrors.New(dErrors.CodeInvariantViolation, "archived policies cannot be published")
	}
	if strings.TrimSpace(p.Content) == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "policy content is empty")
	}
	return nil
}

// ApplyPublish activates the policy as a new version.
func (p *Policy) ApplyPublish(now time.Time) {
	p.Status = StatusActive
	p.PublishedAt = &now
	p.Version++
	p.UpdatedAt = now
}

// Duplicate returns an unpublished draft copy with a fresh identity.
func (p *Policy) Duplicate(newID id.PolicyID, now time.Time) *Policy {
	c := p.Clone()
	c.ID = newID
	c.Name = pstrings.Truncate(p.Name, maxNameLength-len(copySuffix)) + copySuffix
	c.Status = StatusDraft
	c.Version = 1
	c.PublishedAt = nil
	c.CreatedAt = now
	c.UpdatedAt = now
	return c
}

// Stats counts policies by status.
type Stats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Draft    int `json:"draft"`
	Archived int `json:"archived"`
}

// ComplianceRate is the share of policies that are active, as a whole
// percentage rounded half away from zero. No policies means a rate of 0.
func (s Stats) ComplianceRate() int {
	if s.Total == 0 {
		return 0
	}
	return int(math.Round(float64(s.Active) * 100 / float64(s.Total)))
}
