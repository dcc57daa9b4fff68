package sensor

import (
	"math"
	"sync"
	"time"

	"github.com/jhoicas/stockpilot-api/internal/domain"
)

// Signal es el color que muestra la báscula de un producto.
type Signal string

const (
	SignalWhite Signal = "white" // sensor inactivo
	SignalGreen Signal = "green" // peso consistente con un número entero de unidades
	SignalRed   Signal = "red"   // peso inconsistente o sin unidades
)

// Tolerancias de estabilidad (kg y fracción de unidad).
const (
	absoluteTolerance = 0.05
	unitTolerance     = 0.1
)

// Transition describe el cambio de señal producido por una operación.
type Transition struct {
	From Signal
	To   Signal
}

// TurnedRed indica si la operación llevó la señal a rojo desde otro color.
func (t Transition) TurnedRed() bool {
	return t.To == SignalRed && t.From != SignalRed
}

// Snapshot copia de solo lectura del estado de un sensor.
type Snapshot struct {
	ProductName    string
	UnitWeight     float64
	ExpectedWeight float64
	CurrentWeight  float64
	UnitsRemaining int
	InitialUnits   int
	LastChange     time.Time
	Active         bool
	Signal         Signal
}

// WeightSensor báscula virtual de un producto. Infiere retiros y devoluciones comparando el
// peso esperado (unit_weight × unidades iniciales) con el peso actual.
// Todos los métodos toman el mutex propio del sensor.
type WeightSensor struct {
	mu sync.Mutex

	productName    string
	unitWeight     float64
	expectedWeight float64
	currentWeight  float64
	unitsRemaining int
	initialUnits   int
	lastChange     time.Time
	active         bool
	signal         Signal
}

// NewWeightSensor crea un sensor inactivo (blanco) con el peso actual igual al esperado.
func NewWeightSensor(productName string, unitWeight float64, units int) (*WeightSensor, error) {
	if productName == "" {
		return nil, domain.ErrInvalidInput
	}
	if unitWeight <= 0 || units < 0 || math.IsNaN(unitWeight) || math.IsInf(unitWeight, 0) {
		return nil, domain.ErrInvalidQuantity
	}
	expected := unitWeight * float64(units)
	return &WeightSensor{
		productName:    productName,
		unitWeight:     unitWeight,
		expectedWeight: expected,
		currentWeight:  expected,
		unitsRemaining: units,
		initialUnits:   units,
		signal:         SignalWhite,
	}, nil
}

// ProductName devuelve el producto que pesa este sensor.
func (s *WeightSensor) ProductName() string {
	return s.productName
}

// Activate pone el sensor en verde y reinicia el reloj de cambios.
func (s *WeightSensor) Activate(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = true
	s.lastChange = now
	s.signal = SignalGreen
}

// Deactivate apaga el sensor (blanco).
func (s *WeightSensor) Deactivate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
	s.signal = SignalWhite
}

// TakeOne registra el retiro de una unidad. Sin unidades: señal roja y ErrNoStock.
func (s *WeightSensor) TakeOne(now time.Time) (Transition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	from := s.signal
	if s.unitsRemaining <= 0 {
		s.signal = SignalRed
		return Transition{From: from, To: s.signal}, domain.ErrNoStock
	}
	s.unitsRemaining--
	s.currentWeight -= s.unitWeight
	s.lastChange = now
	s.recompute()
	return Transition{From: from, To: s.signal}, nil
}

// PutOne registra la devolución de una unidad. No tiene tope superior.
func (s *WeightSensor) PutOne(now time.Time) Transition {
	s.mu.Lock()
	defer s.mu.Unlock()
	from := s.signal
	s.unitsRemaining++
	s.currentWeight += s.unitWeight
	s.lastChange = now
	s.recompute()
	return Transition{From: from, To: s.signal}
}

// Observe registra una lectura cruda de la báscula (kg).
// Inactivo: solo guarda el peso. Activo y con cambio de peso: reinicia el reloj y recalcula la señal.
func (s *WeightSensor) Observe(weight float64, now time.Time) Transition {
	s.mu.Lock()
	defer s.mu.Unlock()
	from := s.signal
	changed := weight != s.currentWeight
	s.currentWeight = weight
	if s.active && changed {
		s.lastChange = now
		s.recompute()
	}
	return Transition{From: from, To: s.signal}
}

// CheckTimeout pone la señal en rojo si pasó más de timeout desde el último cambio y el
// peso no es estable. Devuelve la transición resultante; no hace nada si está inactivo.
func (s *WeightSensor) CheckTimeout(now time.Time, timeout time.Duration) Transition {
	s.mu.Lock()
	defer s.mu.Unlock()
	from := s.signal
	if !s.active {
		return Transition{From: from, To: from}
	}
	if now.Sub(s.lastChange) > timeout && !s.stable() {
		s.signal = SignalRed
	}
	return Transition{From: from, To: s.signal}
}

// Snapshot devuelve una copia del estado actual.
func (s *WeightSensor) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ProductName:    s.productName,
		UnitWeight:     s.unitWeight,
		ExpectedWeight: s.expectedWeight,
		CurrentWeight:  s.currentWeight,
		UnitsRemaining: s.unitsRemaining,
		InitialUnits:   s.initialUnits,
		LastChange:     s.lastChange,
		Active:         s.active,
		Signal:         s.signal,
	}
}

// recompute: verde si estable, rojo si no. Requiere s.mu tomado.
func (s *WeightSensor) recompute() {
	if s.stable() {
		s.signal = SignalGreen
	} else {
		s.signal = SignalRed
	}
}

// stable: la diferencia esperada-actual es ~0 o ~múltiplo entero del peso unitario.
func (s *WeightSensor) stable() bool {
	diff := s.expectedWeight - s.currentWeight
	if math.Abs(diff) < absoluteTolerance {
		return true
	}
	units := diff / s.unitWeight
	return math.Abs(units-math.Round(units)) < unitTolerance
}
