package catalog

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContributionScalesCustomizableServices(t *testing.T) {
	c := Default()
	nailArt, err := c.Service("nail-art")
	require.NoError(t, err)

	price, duration := nailArt.Contribution(5)
	assert.Equal(t, 500, price)
	assert.Equal(t, 150, duration)

	price, duration = nailArt.Contribution(0)
	assert.Equal(t, 100, price, "quantity below one counts as one")
	assert.Equal(t, 30, duration)
}

func TestContributionIgnoresQuantityForFlatServices(t *testing.T) {
	mani, err := Default().Service("mani-classic")
	require.NoError(t, err)

	price, duration := mani.Contribution(7)
	assert.Equal(t, 350, price)
	assert.Equal(t, 45, duration)
}

func TestContributionRespectsIndividualFlags(t *testing.T) {
	s := Service{ID: "x", Price: 50, Duration: 20, IsCustomizable: true, PricePerUnit: true}
	price, duration := s.Contribution(3)
	assert.Equal(t, 150, price)
	assert.Equal(t, 20, duration, "duration stays flat without DurationPerUnit")
}

func TestLookups(t *testing.T) {
	c := Default()

	_, err := c.Service("missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	m, err := c.Member(2)
	require.NoError(t, err)
	assert.Equal(t, "Sofía", m.Name)
	assert.True(t, m.UnavailableOn(time.Wednesday))
	assert.False(t, m.UnavailableOn(time.Thursday))

	_, err = c.Member(42)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Len(t, c.Services(), 6)
	assert.Len(t, c.Team(), 3)
	assert.Equal(t, "MXN", c.Salon().Currency)
	assert.Equal(t, []string{"Manicura", "Nail Art", "Pedicura", "Spa", "Uñas Esculturales"}, c.Categories())
}

func TestNewRejectsInvalidEntries(t *testing.T) {
	tests := []struct {
		name     string
		services []Service
		team     []TeamMember
	}{
		{"negative price", []Service{{ID: "a", Price: -1}}, nil},
		{"negative duration", []Service{{ID: "a", Duration: -5}}, nil},
		{"missing id", []Service{{Name: "nameless"}}, nil},
		{"duplicate service", []Service{{ID: "a"}, {ID: "a"}}, nil},
		{"weekday out of range", nil, []TeamMember{{ID: 1, Name: "x", UnavailableDays: []int{7}}}},
		{"duplicate member", nil, []TeamMember{{ID: 1, Name: "x"}, {ID: 1, Name: "y"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(PitayaNails, tt.services, tt.team)
			assert.Error(t, err)
		})
	}
}

func TestServicesReturnsCopy(t *testing.T) {
	c := Default()
	list := c.Services()
	list[0].Price = 1
	s, err := c.Service(list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 350, s.Price)
}
