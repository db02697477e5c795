package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"compliance-panel/internal/widget/models"
)

func TestClassifyDevice(t *testing.T) {
	cases := []struct {
		name      string
		userAgent string
		want      models.DeviceClass
	}{
		{"missing header", "", models.DeviceBot},
		{"blank header", "   ", models.DeviceBot},
		{"crawler", "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)", models.DeviceBot},
		{"iphone", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1", models.DeviceMobile},
		{"android", "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36", models.DeviceMobile},
		{"windows chrome", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36", models.DeviceDesktop},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyDevice(tc.userAgent))
		})
	}
}
