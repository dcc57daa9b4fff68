// Package seed carga el inventario inicial y los operadores desde un archivo YAML.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/jhoicas/stockpilot-api/internal/application/dto"
	"github.com/jhoicas/stockpilot-api/internal/domain"
	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
)

// Valores por omisión de los lotes generados desde el catálogo.
const (
	DefaultQuantity   = 10
	DefaultExpiryDays = 180
)

// File representa el archivo de semilla completo.
type File struct {
	Defaults    Defaults   `yaml:"defaults"`
	FromCatalog bool       `yaml:"from_catalog"` // un lote por producto del catálogo
	Lots        []Lot      `yaml:"lots"`
	Operators   []Operator `yaml:"operators"`
}

// Defaults cantidad y caducidad de los lotes que no las indican.
type Defaults struct {
	Quantity   int `yaml:"quantity"`
	ExpiryDays int `yaml:"expiry_days"`
}

// Lot un lote a crear. LotID es obligatorio.
type Lot struct {
	LotID       string `yaml:"lot_id"`
	ProductName string `yaml:"product_name"`
	Quantity    *int   `yaml:"quantity,omitempty"`
	ExpiryDays  *int   `yaml:"expiry_days,omitempty"`
}

// Operator un usuario operador a registrar.
type Operator struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Role     string `yaml:"role"`
}

// Result conteo de lo aplicado.
type Result struct {
	LotsCreated      int
	OperatorsCreated int
	Skipped          int
}

// LotCreator crea lotes (inventory.LotUseCase).
type LotCreator interface {
	CreateLot(ctx context.Context, in dto.CreateLotRequest) (*dto.LotResponse, error)
}

// OperatorRegistrar registra operadores (auth.AuthUseCase).
type OperatorRegistrar interface {
	RegisterOperator(email, password, name, role string) (*dto.UserResponse, error)
}

// LoadFile lee y valida un archivo de semilla.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: leer %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodifica el YAML, aplica valores por omisión y valida.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("seed: yaml: %w", err)
	}
	if f.Defaults.Quantity == 0 {
		f.Defaults.Quantity = DefaultQuantity
	}
	if f.Defaults.ExpiryDays == 0 {
		f.Defaults.ExpiryDays = DefaultExpiryDays
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate revisa cantidades y campos obligatorios. Cada lote explícito lleva lot_id para que
// reaplicar la semilla lo reconozca como duplicado.
func (f *File) Validate() error {
	if f.Defaults.Quantity < 0 {
		return fmt.Errorf("seed: defaults.quantity negativo: %w", domain.ErrInvalidQuantity)
	}
	for i, l := range f.Lots {
		if l.ProductName == "" {
			return fmt.Errorf("seed: lots[%d]: product_name requerido: %w", i, domain.ErrInvalidInput)
		}
		if l.LotID == "" {
			return fmt.Errorf("seed: lots[%d]: lot_id requerido: %w", i, domain.ErrInvalidInput)
		}
		if l.Quantity != nil && *l.Quantity < 0 {
			return fmt.Errorf("seed: lots[%d]: quantity negativo: %w", i, domain.ErrInvalidQuantity)
		}
	}
	for i, op := range f.Operators {
		if op.Email == "" || op.Password == "" {
			return fmt.Errorf("seed: operators[%d]: email y password requeridos: %w", i, domain.ErrInvalidInput)
		}
	}
	return nil
}

// Requests convierte los lotes del archivo en solicitudes de alta. Si FromCatalog está activo,
// agrega un lote LOTnnn por cada producto distinto del catálogo que no tenga lote explícito.
func (f *File) Requests(catalog []entity.CatalogProduct) []dto.CreateLotRequest {
	out := make([]dto.CreateLotRequest, 0, len(f.Lots))
	explicit := make(map[string]bool, len(f.Lots))
	for _, l := range f.Lots {
		explicit[l.ProductName] = true
		out = append(out, dto.CreateLotRequest{
			LotID:       l.LotID,
			ProductName: l.ProductName,
			Quantity:    intOr(l.Quantity, f.Defaults.Quantity),
			ExpiryDays:  intOr(l.ExpiryDays, f.Defaults.ExpiryDays),
		})
	}
	if !f.FromCatalog {
		return out
	}

	names := make([]string, 0)
	seen := make(map[string]bool)
	for _, p := range catalog {
		if seen[p.ProductName] || explicit[p.ProductName] {
			continue
		}
		seen[p.ProductName] = true
		names = append(names, p.ProductName)
	}
	sort.Strings(names)
	for i, name := range names {
		out = append(out, dto.CreateLotRequest{
			LotID:       fmt.Sprintf("LOT%03d", i+1),
			ProductName: name,
			Quantity:    f.Defaults.Quantity,
			ExpiryDays:  f.Defaults.ExpiryDays,
		})
	}
	return out
}

// Apply registra operadores y crea lotes. Los duplicados se omiten con un aviso,
// así la semilla puede aplicarse más de una vez.
func Apply(ctx context.Context, f *File, catalog []entity.CatalogProduct, lots LotCreator, ops OperatorRegistrar, log *zerolog.Logger) (Result, error) {
	var res Result
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}

	for _, op := range f.Operators {
		if ops == nil {
			break
		}
		_, err := ops.RegisterOperator(op.Email, op.Password, op.Name, op.Role)
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			res.Skipped++
			log.Warn().Str("email", op.Email).Msg("operador ya existe, se omite")
		case err != nil:
			return res, fmt.Errorf("seed: operador %s: %w", op.Email, err)
		default:
			res.OperatorsCreated++
		}
	}

	for _, req := range f.Requests(catalog) {
		_, err := lots.CreateLot(ctx, req)
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			res.Skipped++
			log.Warn().Str("lot_id", req.LotID).Msg("lote ya existe, se omite")
		case err != nil:
			return res, fmt.Errorf("seed: lote %s (%s): %w", req.LotID, req.ProductName, err)
		default:
			res.LotsCreated++
			log.Debug().Str("lot_id", req.LotID).Str("product", req.ProductName).Int("quantity", req.Quantity).Msg("lote creado")
		}
	}
	return res, nil
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
