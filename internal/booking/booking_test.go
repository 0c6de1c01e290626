package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/pitaya-nails-booking/internal/catalog"
)

func TestComputeTotalsScalesCustomizableServices(t *testing.T) {
	cat := catalog.Default()
	sel := Selection{
		Services: []string{"nail-art", "mani-classic"},
		Customizations: map[string]Customization{
			"nail-art":     {Quantity: 5, Notes: "flores"},
			"mani-classic": {Quantity: 9},
		},
	}

	lines := Lines(cat, sel)
	require.Len(t, lines, 2)
	assert.Equal(t, 500, lines[0].Price)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, "flores", lines[0].Notes)
	assert.Equal(t, 350, lines[1].Price, "flat services ignore stray quantities")
	assert.Equal(t, 1, lines[1].Quantity)

	totals := ComputeTotals(cat, sel)
	assert.Equal(t, Totals{Price: 850, Duration: 150 + 45}, totals)
}

func TestLinesSkipsUnknownServices(t *testing.T) {
	lines := Lines(catalog.Default(), Selection{Services: []string{"ghost", "gel"}})
	require.Len(t, lines, 1)
	assert.Equal(t, "gel", lines[0].Service.ID)
}

func TestCustomizableWithoutEntryCountsOnce(t *testing.T) {
	totals := ComputeTotals(catalog.Default(), Selection{Services: []string{"nail-art"}})
	assert.Equal(t, Totals{Price: 100, Duration: 30}, totals)
}

func TestCloneIsDeep(t *testing.T) {
	date := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	slot := "10:00"
	sel := Selection{
		Services:       []string{"gel"},
		Customizations: map[string]Customization{"nail-art": {Quantity: 2}},
		Professional:   &catalog.TeamMember{ID: 1, Name: "Lily", UnavailableDays: []int{0}},
		Date:           &date,
		Time:           &slot,
	}
	clone := sel.Clone()
	clone.Services[0] = "other"
	clone.Customizations["nail-art"] = Customization{Quantity: 9}
	clone.Professional.UnavailableDays[0] = 5
	*clone.Time = "11:00"

	assert.Equal(t, "gel", sel.Services[0])
	assert.Equal(t, 2, sel.Customizations["nail-art"].Quantity)
	assert.Equal(t, 0, sel.Professional.UnavailableDays[0])
	assert.Equal(t, "10:00", *sel.Time)
}

func TestNewHistoryItem(t *testing.T) {
	cat := catalog.Default()
	lily, _ := cat.Member(1)
	start := time.Date(2026, 10, 20, 16, 0, 0, 0, time.UTC)
	lines := Lines(cat, Selection{Services: []string{"gel", "spa-manos"}})
	appt := Appointment{Start: start, Lines: lines, Totals: Sum(lines), Professional: lily}

	submitted := time.UnixMilli(1760000000123)
	item := NewHistoryItem(appt, submitted)
	assert.Equal(t, "1760000000123", item.ID)
	assert.Equal(t, start, item.Date)
	assert.Equal(t, []ServiceRef{{ID: "gel", Name: "Esmaltado en Gel (Gelish)"}, {ID: "spa-manos", Name: "Spa de Manos"}}, item.Services)
	assert.Equal(t, "Lily", item.ProfessionalName)
	assert.Equal(t, 850, item.TotalPrice)
	assert.Equal(t, 100, item.TotalDuration)
	assert.Equal(t, start.Add(100*time.Minute), appt.End())
	assert.Equal(t, []string{"Esmaltado en Gel (Gelish)", "Spa de Manos"}, appt.ServiceNames())
}
