package jurisdiction

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-panel/internal/jurisdiction/adapters/ipapi"
	"compliance-panel/internal/platform/config"
)

func TestNetworkLocator(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("nothing configured", func(t *testing.T) {
		locator, closeFn, err := NetworkLocator(config.GeoConfig{}, logger)
		require.NoError(t, err)
		assert.Nil(t, locator)
		assert.NoError(t, closeFn())
	})

	t.Run("api url", func(t *testing.T) {
		locator, _, err := NetworkLocator(config.GeoConfig{APIURL: "https://geo.example.com/{ip}"}, logger)
		require.NoError(t, err)
		assert.IsType(t, &ipapi.Client{}, locator)
	})

	t.Run("api url without placeholder", func(t *testing.T) {
		_, _, err := NetworkLocator(config.GeoConfig{APIURL: "https://geo.example.com/"}, logger)
		assert.Error(t, err)
	})

	t.Run("database path wins and must exist", func(t *testing.T) {
		_, closeFn, err := NetworkLocator(config.GeoConfig{
			DBPath: filepath.Join(t.TempDir(), "missing.mmdb"),
			APIURL: "https://geo.example.com/{ip}",
		}, logger)
		assert.Error(t, err)
		assert.NotNil(t, closeFn)
	})
}
