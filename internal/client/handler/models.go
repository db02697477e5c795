package handler

import "compliance-panel/internal/client/models"

type ListResponse struct {
	Clients []*models.Client `json:"clients"`
	Total   int              `json:"total"`
}

func newListResponse(clients []*models.Client) ListResponse {
	if clients == nil {
		clients = []*models.Client{}
	}
	return ListResponse{Clients: clients, Total: len(clients)}
}
