package models

import (
	cmodels "compliance-panel/internal/client/models"
	pmodels "compliance-panel/internal/policy/models"
	wmodels "compliance-panel/internal/widget/models"
)

// Stats are the headline counters of the panel home page.
type Stats struct {
	Policies pmodels.Stats `json:"policies"`
	Widgets  wmodels.Stats `json:"widgets"`
	Clients  cmodels.Stats `json:"clients"`

	// ComplianceRate is the percentage of policies that are active.
	ComplianceRate int `json:"compliance_rate"`
}

// Overview is the stats plus the most recent items of each kind.
type Overview struct {
	Stats          Stats             `json:"stats"`
	RecentPolicies []*pmodels.Policy `json:"recent_policies"`
	RecentWidgets  []*wmodels.Widget `json:"recent_widgets"`
	RecentClients  []*cmodels.Client `json:"recent_clients"`
}
