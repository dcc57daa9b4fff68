package inventory

import (
	"time"

	"github.com/google/uuid"
)

// Clock devuelve el instante actual. Los casos de uso lo reciben inyectado.
type Clock func() time.Time

// UnitIDFunc genera el identificador de una unidad individual.
type UnitIDFunc func() string

// ShortID devuelve los primeros 8 caracteres de un UUIDv4.
func ShortID() string {
	return uuid.New().String()[:8]
}
