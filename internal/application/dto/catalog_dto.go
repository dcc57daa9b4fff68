package dto

import "github.com/shopspring/decimal"

// FlightResponse salida de un vuelo del catálogo.
type FlightResponse struct {
	FlightNumber  string `json:"flight_number"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureTime string `json:"departure_time"`
}

// FlightProductResponse producto cargado en un vuelo.
type FlightProductResponse struct {
	FlightNumber     string          `json:"flight_number"`
	ProductName      string          `json:"product_name"`
	CategoryQuantity int             `json:"category_quantity"`
	WeightKg         decimal.Decimal `json:"weight_kg"`
}
