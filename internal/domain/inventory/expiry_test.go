package inventory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stockpilot-api/internal/domain/inventory"
)

func TestClassify_Fronteras(t *testing.T) {
	cases := []struct {
		days int
		want inventory.Band
	}{
		{-3, inventory.BandShort},
		{0, inventory.BandShort},
		{4, inventory.BandShort},
		{5, inventory.BandUpcoming},
		{14, inventory.BandUpcoming},
		{15, inventory.BandDistant},
		{180, inventory.BandDistant},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, inventory.Classify(tc.days), "días=%d", tc.days)
	}
}

func TestRemainingDays_RedondeaHaciaAbajo(t *testing.T) {
	ref := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 4, inventory.RemainingDays(ref.Add(4*24*time.Hour+23*time.Hour), ref))
	assert.Equal(t, 5, inventory.RemainingDays(ref.Add(5*24*time.Hour), ref))
	assert.Equal(t, 0, inventory.RemainingDays(ref.Add(time.Hour), ref))
	// Un lote caducado hace una hora ya cuenta como día -1.
	assert.Equal(t, -1, inventory.RemainingDays(ref.Add(-time.Hour), ref))
}

func TestClassifyAt_UsaReferenciaInyectada(t *testing.T) {
	ref := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	expiry := ref.AddDate(0, 0, 14)

	assert.Equal(t, inventory.BandUpcoming, inventory.ClassifyAt(expiry, ref))
	assert.Equal(t, inventory.BandShort, inventory.ClassifyAt(expiry, ref.AddDate(0, 0, 10)))
	assert.Equal(t, inventory.BandDistant, inventory.ClassifyAt(expiry, ref.AddDate(0, 0, -1)))
}

func TestEmptySummary_TieneLosTresRangos(t *testing.T) {
	s := inventory.EmptySummary()
	assert.Len(t, s, 3)
	for _, b := range inventory.Bands() {
		assert.Zero(t, s[b])
	}
}
