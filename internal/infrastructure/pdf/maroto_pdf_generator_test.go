package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/stockpilot-api/internal/application/inventory"
	domaininv "github.com/jhoicas/stockpilot-api/internal/domain/inventory"
	"github.com/jhoicas/stockpilot-api/internal/infrastructure/pdf"
)

func TestMarotoPDFGenerator_GenerateExpiryReport(t *testing.T) {
	ref := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	report := &appinv.ExpiryReport{
		Title:       "AM109",
		GeneratedAt: ref,
		Rows: []appinv.ExpiryReportRow{
			{LotID: "L1", ProductName: "Juice", Quantity: 5, ExpiryDate: ref.AddDate(0, 0, 3), RemainingDays: 3, Band: domaininv.BandShort},
			{LotID: "L2", ProductName: "Juice", Quantity: 10, ExpiryDate: ref.AddDate(0, 0, 20), RemainingDays: 20, Band: domaininv.BandDistant},
		},
		Bands:      map[domaininv.Band]int{domaininv.BandShort: 5, domaininv.BandUpcoming: 0, domaininv.BandDistant: 10},
		TotalUnits: 15,
		TotalLots:  2,
	}

	doc, err := pdf.NewMarotoPDFGenerator("test").GenerateExpiryReport(context.Background(), report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF-")))
}

func TestMarotoPDFGenerator_ReporteVacio(t *testing.T) {
	report := &appinv.ExpiryReport{Title: "Inventario", GeneratedAt: time.Now(), Bands: domaininv.EmptySummary()}

	doc, err := pdf.NewMarotoPDFGenerator("").GenerateExpiryReport(context.Background(), report)
	require.NoError(t, err)
	assert.NotEmpty(t, doc)
}

func TestMarotoPDFGenerator_ReporteNil(t *testing.T) {
	_, err := pdf.NewMarotoPDFGenerator("").GenerateExpiryReport(context.Background(), nil)
	assert.Error(t, err)
}
