package entity

import "github.com/shopspring/decimal"

// Flight representa un vuelo del catálogo de catering.
type Flight struct {
	FlightNumber  string
	Origin        string
	Destination   string
	DepartureTime string
}

// CatalogProduct es un producto cargado en un vuelo: cantidad por categoría y peso unitario (kg).
type CatalogProduct struct {
	FlightNumber     string
	ProductName      string
	CategoryQuantity int
	UnitWeight       decimal.Decimal
}
