package service

import (
	"strings"

	"github.com/mssola/useragent"

	"compliance-panel/internal/widget/models"
)

// ClassifyDevice buckets a User-Agent header. Clients that send none are
// treated as bots since every browser sends one.
func ClassifyDevice(userAgent string) models.DeviceClass {
	if strings.TrimSpace(userAgent) == "" {
		return models.DeviceBot
	}
	ua := useragent.New(userAgent)
	switch {
	case ua.Bot():
		return models.DeviceBot
	case ua.Mobile():
		return models.DeviceMobile
	default:
		return models.DeviceDesktop
	}
}
