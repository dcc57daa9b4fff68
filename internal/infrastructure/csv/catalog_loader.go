package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
)

var catalogHeader = []string{"flight_number", "origin", "destination", "departure_time", "product_name", "category_quantity", "weight_kg"}

// Loader carga el catálogo de vuelos desde CSV.
type Loader struct{}

// NewLoader crea un loader de CSV.
func NewLoader() *Loader {
	return &Loader{}
}

// LoadCatalog lee el archivo de vuelos (una fila por producto de vuelo).
func (l *Loader) LoadCatalog(filename string) ([]entity.Flight, []entity.CatalogProduct, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open catalog file %s: %w", filename, err)
	}
	defer file.Close()
	return l.ParseCatalog(file)
}

// ParseCatalog interpreta el CSV del catálogo. Los vuelos se deduplican conservando la primera fila.
func (l *Loader) ParseCatalog(r io.Reader) ([]entity.Flight, []entity.CatalogProduct, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read catalog CSV: %w", err)
	}
	if len(records) < 1 {
		return nil, nil, fmt.Errorf("catalog CSV must have a header")
	}
	if !validateHeader(records[0], catalogHeader) {
		return nil, nil, fmt.Errorf("catalog CSV header mismatch. Expected: %v, Got: %v", catalogHeader, records[0])
	}

	var (
		flights  []entity.Flight
		products []entity.CatalogProduct
		seen     = make(map[string]bool)
	)
	for i, record := range records[1:] {
		if len(record) != len(catalogHeader) {
			return nil, nil, fmt.Errorf("catalog CSV row %d: expected %d columns, got %d", i+2, len(catalogHeader), len(record))
		}
		flight, product, err := parseCatalogRow(record)
		if err != nil {
			return nil, nil, fmt.Errorf("catalog CSV row %d: %w", i+2, err)
		}
		if !seen[flight.FlightNumber] {
			seen[flight.FlightNumber] = true
			flights = append(flights, flight)
		}
		products = append(products, product)
	}
	return flights, products, nil
}

func parseCatalogRow(record []string) (entity.Flight, entity.CatalogProduct, error) {
	flightNumber := strings.TrimSpace(record[0])
	productName := strings.TrimSpace(record[4])
	if flightNumber == "" || productName == "" {
		return entity.Flight{}, entity.CatalogProduct{}, fmt.Errorf("flight_number and product_name are required")
	}
	qty, err := strconv.Atoi(strings.TrimSpace(record[5]))
	if err != nil {
		return entity.Flight{}, entity.CatalogProduct{}, fmt.Errorf("invalid category_quantity %q: %w", record[5], err)
	}
	if qty < 0 {
		return entity.Flight{}, entity.CatalogProduct{}, fmt.Errorf("category_quantity must be >= 0, got %d", qty)
	}
	weight, err := decimal.NewFromString(strings.TrimSpace(record[6]))
	if err != nil {
		return entity.Flight{}, entity.CatalogProduct{}, fmt.Errorf("invalid weight_kg %q: %w", record[6], err)
	}
	if !weight.IsPositive() {
		return entity.Flight{}, entity.CatalogProduct{}, fmt.Errorf("weight_kg must be > 0, got %s", weight)
	}

	flight := entity.Flight{
		FlightNumber:  flightNumber,
		Origin:        strings.TrimSpace(record[1]),
		Destination:   strings.TrimSpace(record[2]),
		DepartureTime: strings.TrimSpace(record[3]),
	}
	product := entity.CatalogProduct{
		FlightNumber:     flightNumber,
		ProductName:      productName,
		CategoryQuantity: qty,
		UnitWeight:       weight,
	}
	return flight, product, nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}
	for i, col := range expected {
		if strings.TrimSpace(strings.TrimPrefix(actual[i], "\ufeff")) != col {
			return false
		}
	}
	return true
}
