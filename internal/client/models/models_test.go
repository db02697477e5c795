package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jmodels "compliance-panel/internal/jurisdiction/models"
	id "compliance-panel/pkg/domain"
	dErrors "compliance-panel/pkg/domain-errors"
	"compliance-panel/pkg/testutil"
)

var testNow = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

func TestNewClient(t *testing.T) {
	t.Run("defaults to pending and normalizes country", func(t *testing.T) {
		c, err := NewClient(id.NewClientID(), &CreateRequest{Name: "Acme", Email: "ops@acme.test", Country: "GB"}, testNow)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, c.Status)
		assert.Equal(t, jmodels.CountryCode("uk"), c.Country)
		require.NotNil(t, c.LastActive)
		assert.Equal(t, testNow, *c.LastActive)
	})

	t.Run("invalid inputs violate invariants", func(t *testing.T) {
		cases := []struct {
			name string
			req  CreateRequest
		}{
			{"missing name", CreateRequest{Email: "a@b.test"}},
			{"bad email", CreateRequest{Name: "A", Email: "not-an-email"}},
			{"display-name email", CreateRequest{Name: "A", Email: "Ops <ops@acme.test>"}},
			{"ftp website", CreateRequest{Name: "A", Email: "a@b.test", Website: "ftp://acme.test"}},
			{"unknown status", CreateRequest{Name: "A", Email: "a@b.test", Status: "gone"}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := NewClient(id.NewClientID(), &tc.req, testNow)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation), "got %v", err)
			})
		}
	})

	t.Run("subscription end before start", func(t *testing.T) {
		start := testNow
		end := testNow.Add(-time.Hour)
		_, err := NewClient(id.NewClientID(), &CreateRequest{
			Name:         "A",
			Email:        "a@b.test",
			Subscription: SubscriptionRequest{StartDate: &start, EndDate: &end},
		}, testNow)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestApplyUpdateIsAtomic(t *testing.T) {
	c, err := NewClient(id.NewClientID(), &CreateRequest{Name: "Acme", Email: "ops@acme.test"}, testNow)
	require.NoError(t, err)

	name := "Renamed"
	bad := "broken"
	err = c.ApplyUpdate(&UpdateRequest{Name: &name, Email: &bad}, testNow.Add(time.Hour))
	require.Error(t, err)
	assert.Equal(t, "Acme", c.Name)
	assert.Equal(t, testNow, c.UpdatedAt)

	require.NoError(t, c.ApplyUpdate(&UpdateRequest{Name: &name}, testNow.Add(time.Hour)))
	assert.Equal(t, "Renamed", c.Name)
	assert.Equal(t, testNow.Add(time.Hour), c.UpdatedAt)
}

func TestActivateDeactivate(t *testing.T) {
	testutil.Given(t, "a pending client", func(t *testing.T) {
		c, err := NewClient(id.NewClientID(), &CreateRequest{Name: "Acme", Email: "ops@acme.test"}, testNow)
		require.NoError(t, err)
		require.Equal(t, StatusPending, c.Status)

		testutil.When(t, "it is activated", func(t *testing.T) {
			c.Activate(testNow.Add(time.Minute))

			testutil.Then(t, "client and subscription are active", func(t *testing.T) {
				assert.Equal(t, StatusActive, c.Status)
				assert.Equal(t, "active", c.Subscription.Status)
			})
		})

		testutil.When(t, "it is deactivated", func(t *testing.T) {
			c.Deactivate(testNow.Add(2 * time.Minute))

			testutil.Then(t, "client and subscription are inactive", func(t *testing.T) {
				assert.Equal(t, StatusInactive, c.Status)
				assert.Equal(t, "inactive", c.Subscription.Status)
				assert.Equal(t, testNow.Add(2*time.Minute), c.UpdatedAt)
			})
		})
	})
}

func TestFilter(t *testing.T) {
	c := &Client{
		Name:         "Acme Health",
		Email:        "ops@acme.test",
		Website:      "https://acme.example",
		Status:       StatusActive,
		Industry:     "Healthcare",
		Subscription: Subscription{Plan: "Enterprise"},
	}

	f, err := NewFilter("all", "healthcare", "ENTERPRISE", "  ACME.EXAMPLE ")
	require.NoError(t, err)
	assert.True(t, f.Matches(c))

	f, err = NewFilter("Pending", "", "", "")
	require.NoError(t, err)
	assert.False(t, f.Matches(c))

	_, err = NewFilter("bogus", "", "", "")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestRequestValidation(t *testing.T) {
	create := &CreateRequest{Name: " Acme ", Email: " ops@acme.test ", Country: "usa"}
	create.Normalize()
	assert.Equal(t, "Acme", create.Name)
	assert.True(t, dErrors.HasCode(create.Validate(), dErrors.CodeValidation))

	create.Country = "us"
	assert.NoError(t, create.Validate())

	assert.True(t, dErrors.HasCode((&CreateRequest{Name: "A"}).Validate(), dErrors.CodeValidation))

	empty := ""
	assert.True(t, dErrors.HasCode((&UpdateRequest{Email: &empty}).Validate(), dErrors.CodeValidation))
	status := " ACTIVE "
	update := &UpdateRequest{Status: &status}
	update.Normalize()
	assert.NoError(t, update.Validate())
	assert.Equal(t, "active", *update.Status)
}
