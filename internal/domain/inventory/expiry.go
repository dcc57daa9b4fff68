package inventory

import (
	"math"
	"time"
)

// Band es el rango de urgencia de caducidad de un lote.
type Band string

const (
	BandShort    Band = "short"    // caduca en menos de 5 días (o ya caducó)
	BandUpcoming Band = "upcoming" // entre 5 y 14 días
	BandDistant  Band = "distant"  // 15 días o más
)

// Umbrales en días completos.
const (
	ShortThresholdDays    = 5
	UpcomingThresholdDays = 15
)

// Bands devuelve los rangos en orden de urgencia.
func Bands() []Band {
	return []Band{BandShort, BandUpcoming, BandDistant}
}

// Classify implementa el clasificador de caducidad (servicio de dominio, función pura).
// remainingDays < 5 → Short; 5 ≤ remainingDays < 15 → Upcoming; resto → Distant.
func Classify(remainingDays int) Band {
	switch {
	case remainingDays < ShortThresholdDays:
		return BandShort
	case remainingDays < UpcomingThresholdDays:
		return BandUpcoming
	default:
		return BandDistant
	}
}

// RemainingDays devuelve floor((expiry - ref) / 24h). Negativo si el lote ya caducó.
func RemainingDays(expiry, ref time.Time) int {
	return int(math.Floor(expiry.Sub(ref).Hours() / 24))
}

// ClassifyAt clasifica una fecha de caducidad respecto al instante de referencia ref.
func ClassifyAt(expiry, ref time.Time) Band {
	return Classify(RemainingDays(expiry, ref))
}

// EmptySummary devuelve un resumen con los tres rangos en cero.
func EmptySummary() map[Band]int {
	return map[Band]int{BandShort: 0, BandUpcoming: 0, BandDistant: 0}
}
