package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
	domaininv "github.com/jhoicas/stockpilot-api/internal/domain/inventory"
	"github.com/jhoicas/stockpilot-api/internal/domain/repository"
)

// ExpiryReportRow una línea del reporte: un lote con su urgencia de caducidad.
type ExpiryReportRow struct {
	LotID         string
	ProductName   string
	Quantity      int
	ExpiryDate    time.Time
	RemainingDays int
	Band          domaininv.Band
}

// ExpiryReport datos del reporte de caducidad. Las filas van en orden FEFO.
type ExpiryReport struct {
	Title       string
	GeneratedAt time.Time
	Rows        []ExpiryReportRow
	Bands       map[domaininv.Band]int
	TotalUnits  int
	TotalLots   int
}

// ExpiryReportGenerator puerto hacia el renderizador del reporte (PDF).
type ExpiryReportGenerator interface {
	GenerateExpiryReport(ctx context.Context, report *ExpiryReport) ([]byte, error)
}

// ReportUseCase arma el reporte de caducidad y lo delega al generador.
type ReportUseCase struct {
	lots      repository.LotRepository
	generator ExpiryReportGenerator
	now       Clock
	title     string
}

// NewReportUseCase construye el caso de uso. title aparece en la cabecera del documento.
func NewReportUseCase(lots repository.LotRepository, generator ExpiryReportGenerator, clock Clock, title string) *ReportUseCase {
	if clock == nil {
		clock = time.Now
	}
	if title == "" {
		title = "Inventario"
	}
	return &ReportUseCase{lots: lots, generator: generator, now: clock, title: title}
}

// Build arma los datos del reporte sin renderizarlos.
func (uc *ReportUseCase) Build(ctx context.Context) (*ExpiryReport, error) {
	lots, err := uc.lots.ListLots(ctx)
	if err != nil {
		return nil, err
	}
	ref := uc.now()
	sortByExpiry(lots)

	report := &ExpiryReport{
		Title:       uc.title,
		GeneratedAt: ref,
		Rows:        make([]ExpiryReportRow, 0, len(lots)),
		Bands:       domaininv.EmptySummary(),
		TotalLots:   len(lots),
	}
	for _, lot := range lots {
		days := domaininv.RemainingDays(lot.ExpiryDate, ref)
		band := domaininv.Classify(days)
		report.Bands[band] += lot.Quantity
		report.TotalUnits += lot.Quantity
		report.Rows = append(report.Rows, ExpiryReportRow{
			LotID:         lot.LotID,
			ProductName:   lot.ProductName,
			Quantity:      lot.Quantity,
			ExpiryDate:    lot.ExpiryDate,
			RemainingDays: days,
			Band:          band,
		})
	}
	return report, nil
}

// ExpiryPDF genera el reporte de caducidad en PDF.
func (uc *ReportUseCase) ExpiryPDF(ctx context.Context) ([]byte, error) {
	report, err := uc.Build(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := uc.generator.GenerateExpiryReport(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("reporte de caducidad: %w", err)
	}
	return doc, nil
}

// sortByExpiry ordena todos los lotes por caducidad, sin agrupar por producto.
func sortByExpiry(lots []*entity.Lot) {
	sort.SliceStable(lots, func(i, j int) bool {
		a, b := lots[i], lots[j]
		if !a.ExpiryDate.Equal(b.ExpiryDate) {
			return a.ExpiryDate.Before(b.ExpiryDate)
		}
		if a.ProductName != b.ProductName {
			return a.ProductName < b.ProductName
		}
		return a.Seq < b.Seq
	})
}
