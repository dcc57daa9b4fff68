package dto

// MaxPageLimit tope de filas por página en los listados.
const MaxPageLimit = 500

// PageRequest paginación por query (?limit=&offset=). Limit 0 devuelve todas las filas.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// Valid indica si limit y offset son utilizables.
func (p PageRequest) Valid() bool {
	return p.Limit >= 0 && p.Limit <= MaxPageLimit && p.Offset >= 0
}

// Bounds devuelve el rango [start, end) de la página sobre n filas.
func (p PageRequest) Bounds(n int) (int, int) {
	start := min(p.Offset, n)
	if p.Limit == 0 {
		return start, n
	}
	return start, min(start+p.Limit, n)
}

// PageResponse metadatos de página; Total cuenta todas las filas, no solo las devueltas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
