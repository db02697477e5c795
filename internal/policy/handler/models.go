package handler

import "compliance-panel/internal/policy/models"

type ListResponse struct {
	Policies []*models.Policy `json:"policies"`
	Total    int              `json:"total"`
}

func newListResponse(policies []*models.Policy) ListResponse {
	if policies == nil {
		policies = []*models.Policy{}
	}
	return ListResponse{Policies: policies, Total: len(policies)}
}
