package models

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "compliance-panel/pkg/domain"
	dErrors "compliance-panel/pkg/domain-errors"
)

var now = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

func newBanner(t *testing.T) *Widget {
	t.Helper()
	w, err := NewWidget(id.NewWidgetID(), "Cookie banner", TypeCookieBanner, "", "", Config{}, now)
	require.NoError(t, err)
	return w
}

func TestNewWidgetDefaults(t *testing.T) {
	w := newBanner(t)

	assert.Equal(t, StatusDraft, w.Status)
	assert.Equal(t, DefaultPlatform, w.Platform)
	assert.Equal(t, DefaultTheme, w.Config.Theme)
	assert.Equal(t, DefaultPosition, w.Config.Position)
	assert.Nil(t, w.DeployedAt)
	assert.Zero(t, w.Impressions)
}

func TestNewWidgetRejects(t *testing.T) {
	cases := map[string]struct {
		name     string
		typ      Type
		platform string
		cfg      Config
	}{
		"empty name":       {name: "", typ: TypeCookieBanner},
		"long name":        {name: strings.Repeat("x", 201), typ: TypeCookieBanner},
		"unknown type":     {name: "w", typ: "popup"},
		"unknown platform": {name: "w", typ: TypeCookieBanner, platform: "myspace"},
		"bad theme":        {name: "w", typ: TypeCookieBanner, cfg: Config{Theme: "neon"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewWidget(id.NewWidgetID(), tc.name, tc.typ, "", tc.platform, tc.cfg, now)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation), "got %v", err)
		})
	}
}

func TestToggle(t *testing.T) {
	w := newBanner(t)

	w.Toggle(now)
	assert.Equal(t, StatusActive, w.Status)
	require.NotNil(t, w.DeployedAt)
	deployed := *w.DeployedAt

	later := now.Add(time.Hour)
	w.Toggle(later)
	assert.Equal(t, StatusInactive, w.Status)
	assert.Equal(t, deployed, *w.DeployedAt, "deactivation keeps the last deployment time")
	assert.Equal(t, later, w.UpdatedAt)

	w.Toggle(later.Add(time.Hour))
	assert.Equal(t, StatusActive, w.Status)
	assert.Equal(t, later.Add(time.Hour), *w.DeployedAt)
}

func TestDuplicate(t *testing.T) {
	w := newBanner(t)
	w.Deploy(now)
	w.Impressions = 42
	w.Config.Extras = map[string]any{"entity_name": "Acme"}

	dup := w.Duplicate(id.NewWidgetID(), now.Add(time.Minute))

	assert.NotEqual(t, w.ID, dup.ID)
	assert.Equal(t, "Cookie banner (Copy)", dup.Name)
	assert.Equal(t, StatusInactive, dup.Status)
	assert.Zero(t, dup.Impressions)
	assert.Nil(t, dup.DeployedAt)

	dup.Config.Extras["entity_name"] = "Other"
	assert.Equal(t, "Acme", w.Config.Extras["entity_name"])
}

func TestDuplicateTruncatesOnRuneBoundary(t *testing.T) {
	w := newBanner(t)
	w.Name = strings.Repeat("é", 100)

	dup := w.Duplicate(id.NewWidgetID(), now)

	assert.True(t, utf8.ValidString(dup.Name))
	assert.LessOrEqual(t, len(dup.Name), 200)
	assert.Equal(t, strings.Repeat("é", 96)+" (Copy)", dup.Name)
}

func TestConfigScan(t *testing.T) {
	var c Config
	require.NoError(t, c.Scan([]byte(`{"theme":"dark","position":"center","extras":{"entity_name":"Acme"}}`)))
	assert.Equal(t, "dark", c.Theme)
	assert.Equal(t, "Acme", c.Extras["entity_name"])

	require.NoError(t, c.Scan(nil))
	assert.Equal(t, Config{}, c)

	assert.Error(t, c.Scan(42))
}

func TestRequests(t *testing.T) {
	t.Run("create requires name and type", func(t *testing.T) {
		req := &CreateRequest{Name: " "}
		req.Normalize()
		assert.True(t, dErrors.HasCode(req.Validate(), dErrors.CodeValidation))
	})

	t.Run("create normalizes config", func(t *testing.T) {
		req := &CreateRequest{Name: "w", Type: "Cookie-Banner", Config: Config{Theme: "DARK"}}
		req.Normalize()
		require.NoError(t, req.Validate())
		assert.Equal(t, "dark", req.Config.Theme)
		assert.Equal(t, DefaultSize, req.Config.Size)
	})

	t.Run("update rejects unknown platform", func(t *testing.T) {
		p := "myspace"
		req := &UpdateRequest{Platform: &p}
		req.Normalize()
		assert.True(t, dErrors.HasCode(req.Validate(), dErrors.CodeValidation))
	})

	t.Run("filter", func(t *testing.T) {
		f, err := NewFilter("ACTIVE", "all", "Banner")
		require.NoError(t, err)
		w := newBanner(t)
		assert.False(t, f.Matches(w))
		w.Deploy(now)
		assert.True(t, f.Matches(w))

		_, err = NewFilter("deleted", "", "")
		assert.Error(t, err)
	})
}
