package handler

import (
	"compliance-panel/internal/widget/models"
	id "compliance-panel/pkg/domain"
)

type ListResponse struct {
	Widgets []*models.Widget `json:"widgets"`
	Total   int              `json:"total"`
}

func newListResponse(widgets []*models.Widget) ListResponse {
	if widgets == nil {
		widgets = []*models.Widget{}
	}
	return ListResponse{Widgets: widgets, Total: len(widgets)}
}

type ImpressionsResponse struct {
	WidgetID id.WidgetID                `json:"widget_id"`
	ByDevice models.ImpressionBreakdown `json:"by_device"`
}

// EmbedResponse is what a customer site needs to render a widget. Admin-only
// fields such as impressions are left out.
type EmbedResponse struct {
	ID       id.WidgetID   `json:"id"`
	Type     models.Type   `json:"type"`
	Platform string        `json:"platform"`
	Config   models.Config `json:"config"`
}

type ImpressionRecordedResponse struct {
	DeviceClass models.DeviceClass `json:"device_class"`
}
