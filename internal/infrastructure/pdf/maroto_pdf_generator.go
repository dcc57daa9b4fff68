// Package pdf genera el reporte de caducidad del inventario en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + fecha de generación                        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: unidades por rango (corto / próximo / lejano)      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Lote | Producto | Cant | Caduca | Días | Rango       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: lotes / unidades                                   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	appinv "github.com/jhoicas/stockpilot-api/internal/application/inventory"
	domaininv "github.com/jhoicas/stockpilot-api/internal/domain/inventory"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorShort   = &props.Color{Red: 192, Green: 0, Blue: 0}
	colorSoon    = &props.Color{Red: 204, Green: 122, Blue: 0}
	colorDistant = &props.Color{Red: 0, Green: 128, Blue: 64}
)

var bandLabels = map[domaininv.Band]string{
	domaininv.BandShort:    "Corto",
	domaininv.BandUpcoming: "Próximo",
	domaininv.BandDistant:  "Lejano",
}

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa inventory.ExpiryReportGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	author string
}

// NewMarotoPDFGenerator construye el generador. author va en los metadatos del PDF.
func NewMarotoPDFGenerator(author string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{author: author}
}

// GenerateExpiryReport genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateExpiryReport(_ context.Context, report *appinv.ExpiryReport) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("pdf: reporte nil")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de caducidad", true).
		WithAuthor(nonEmpty(g.author, "stockpilot"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(bandsRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	if len(report.Rows) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Sin lotes en inventario", props.Text{Size: 8, Align: align.Center, Top: 2, Color: colorGray}),
		)))
	}
	for _, r := range tableDetailRows(report.Rows) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(report))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título (izq) y fecha de generación (der).
func headerRow(report *appinv.ExpiryReport) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New(report.Title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Rotación FEFO por fecha de caducidad", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("REPORTE DE CADUCIDAD", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("Generado: "+report.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

// bandsRow: unidades por rango de urgencia.
func bandsRow(report *appinv.ExpiryReport) core.Row {
	cell := func(b domaininv.Band) core.Col {
		return col.New(4).Add(
			text.New(bandLabels[b], props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Center, Color: bandColor(b), Top: 1,
			}),
			text.New(strconv.Itoa(report.Bands[b])+" u.", props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Center, Top: 6,
			}),
		)
	}
	return row.New(14).Add(
		cell(domaininv.BandShort),
		cell(domaininv.BandUpcoming),
		cell(domaininv.BandDistant),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Lote", 2, align.Left),
		h("Producto", 4, align.Left),
		h("Cant.", 1, align.Center),
		h("Caduca", 2, align.Center),
		h("Días", 1, align.Center),
		h("Rango", 2, align.Center),
	)
}

// tableDetailRows: una fila por lote.
func tableDetailRows(rows []appinv.ExpiryReportRow) []core.Row {
	result := make([]core.Row, 0, len(rows))
	for _, r := range rows {
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(r.LotID, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(r.ProductName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(strconv.Itoa(r.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(r.ExpiryDate.Format(appinv.DateLayout), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(1).Add(text.New(strconv.Itoa(r.RemainingDays), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(bandLabels[r.Band], props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Center, Top: 1, Color: bandColor(r.Band),
			})),
		))
	}
	return result
}

func totalsRow(report *appinv.ExpiryReport) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 1, Color: colorPrimary})
	}
	return row.New(12).Add(
		col.New(6),
		col.New(3).Add(
			label("Lotes:"),
			text.New("Unidades:", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 5}),
		),
		col.New(3).Add(
			value(strconv.Itoa(report.TotalLots)),
			text.New(strconv.Itoa(report.TotalUnits), props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 1, Top: 5, Color: colorPrimary,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func bandColor(b domaininv.Band) *props.Color {
	switch b {
	case domaininv.BandShort:
		return colorShort
	case domaininv.BandUpcoming:
		return colorSoon
	default:
		return colorDistant
	}
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
