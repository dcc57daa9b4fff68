package sensor

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/jhoicas/stockpilot-api/internal/domain"
	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
)

// Valores por defecto del barrido de sensores.
const (
	DefaultTriggerTimeout = 5 * time.Second
	DefaultPollInterval   = time.Second
)

// ProductSpec producto a pesar durante una corrida.
type ProductSpec struct {
	ProductName string
	UnitWeight  float64
	UnitCount   int
}

// Config dependencias y tiempos de una corrida. Los campos vacíos toman valores por defecto.
type Config struct {
	TriggerTimeout time.Duration
	PollInterval   time.Duration
	Clock          func() time.Time
	Logger         *zerolog.Logger
	Stock          StockWithdrawer
	Signals        SignalPublisher
}

// TakeResult resultado de tomar una unidad.
type TakeResult struct {
	ProductName    string
	Signal         Signal
	UnitsRemaining int
	Basket         int
	Consumptions   []entity.Consumption
	// LedgerWarning no vacío si el sensor aceptó la toma pero el libro de lotes falló.
	LedgerWarning string
}

// PutResult resultado de devolver una unidad.
type PutResult struct {
	ProductName    string
	Signal         Signal
	UnitsRemaining int
	Basket         int
}

// RunStatus estado de la corrida y de todos sus sensores.
type RunStatus struct {
	FlightNumber string
	Running      bool
	StartedAt    time.Time
	SweepTicks   int64
	Sensors      []Snapshot // ordenados por producto
	Basket       map[string]int
}

// Run orquesta una corrida de surtido (un vuelo): es dueña de los sensores, del canasto y del
// barrido periódico que revisa sensores inestables sin cambios recientes.
//
// Bloqueo: lifecycle serializa Start/Stop; mu protege sensores, canasto y metadatos.
// Orden: lifecycle → mu → WeightSensor.mu. Los eventos se publican sin ningún lock tomado.
type Run struct {
	lifecycle sync.Mutex

	mu        sync.RWMutex
	sensors   map[string]*WeightSensor
	basket    map[string]int
	flight    string
	startedAt time.Time
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	running atomic.Bool
	ticks   atomic.Int64

	triggerTimeout time.Duration
	pollInterval   time.Duration
	now            func() time.Time
	log            zerolog.Logger
	stock          StockWithdrawer
	signals        SignalPublisher
}

// NewRun construye una corrida detenida.
func NewRun(cfg Config) *Run {
	r := &Run{
		sensors:        make(map[string]*WeightSensor),
		basket:         make(map[string]int),
		triggerTimeout: cfg.TriggerTimeout,
		pollInterval:   cfg.PollInterval,
		now:            cfg.Clock,
		stock:          cfg.Stock,
		signals:        cfg.Signals,
		log:            zerolog.Nop(),
	}
	if r.triggerTimeout <= 0 {
		r.triggerTimeout = DefaultTriggerTimeout
	}
	if r.pollInterval <= 0 {
		r.pollInterval = DefaultPollInterval
	}
	if r.now == nil {
		r.now = time.Now
	}
	if cfg.Logger != nil {
		r.log = cfg.Logger.With().Str("component", "sensor_run").Logger()
	}
	if r.signals == nil {
		r.signals = noopPublisher{}
	}
	return r
}

// Start detiene la corrida anterior (si hay), crea y activa un sensor por producto y lanza el barrido.
// Con nombres repetidos gana la última especificación. El barrido no hereda la cancelación de ctx.
func (r *Run) Start(ctx context.Context, flightNumber string, products []ProductSpec) error {
	if len(products) == 0 {
		return domain.ErrInvalidInput
	}
	sensors := make(map[string]*WeightSensor, len(products))
	for _, p := range products {
		s, err := NewWeightSensor(p.ProductName, p.UnitWeight, p.UnitCount)
		if err != nil {
			return err
		}
		sensors[p.ProductName] = s
	}

	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()
	r.stopLocked()

	now := r.now()
	basket := make(map[string]int, len(sensors))
	for name, s := range sensors {
		s.Activate(now)
		basket[name] = 0
	}

	sweepCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	r.mu.Lock()
	r.sensors = sensors
	r.basket = basket
	r.flight = flightNumber
	r.startedAt = now
	r.cancel = cancel
	r.mu.Unlock()

	r.ticks.Store(0)
	r.running.Store(true)
	r.wg.Add(1)
	go r.sweep(sweepCtx)

	r.log.Info().Str("flight", flightNumber).Int("sensors", len(sensors)).Msg("corrida iniciada")
	return nil
}

// Stop cancela el barrido, espera a que termine y desactiva todos los sensores. Idempotente.
// Al retornar no queda ningún CheckTimeout en curso.
func (r *Run) Stop() {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()
	r.stopLocked()
}

func (r *Run) stopLocked() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()
	if cancel == nil {
		return
	}

	cancel()
	r.wg.Wait()
	r.running.Store(false)

	r.mu.RLock()
	for _, s := range r.sensors {
		s.Deactivate()
	}
	flight := r.flight
	r.mu.RUnlock()
	r.log.Info().Str("flight", flight).Int64("sweep_ticks", r.ticks.Load()).Msg("corrida detenida")
}

// TakeOne registra la toma de una unidad y la descuenta del libro de lotes (FEFO, best-effort).
// Un fallo del libro no revierte el sensor: se informa en LedgerWarning.
// Sin corrida activa responde ErrNotTracked.
func (r *Run) TakeOne(ctx context.Context, product string) (TakeResult, error) {
	r.mu.Lock()
	s, ok := r.sensors[product]
	if !ok || !r.running.Load() {
		r.mu.Unlock()
		return TakeResult{}, domain.ErrNotTracked
	}
	tr, err := s.TakeOne(r.now())
	if err == nil {
		r.basket[product]++
	}
	basket := r.basket[product]
	flight := r.flight
	r.mu.Unlock()

	snap := s.Snapshot()
	if tr.TurnedRed() {
		reason := ReasonChange
		if err != nil {
			reason = ReasonNoStock
		}
		r.publish(ctx, flight, snap, reason)
	}
	if err != nil {
		return TakeResult{ProductName: product, Signal: snap.Signal, UnitsRemaining: snap.UnitsRemaining, Basket: basket}, err
	}

	res := TakeResult{
		ProductName:    product,
		Signal:         snap.Signal,
		UnitsRemaining: snap.UnitsRemaining,
		Basket:         basket,
	}
	if r.stock != nil {
		got, werr := r.stock.Withdraw(ctx, product, 1)
		if werr != nil {
			r.log.Warn().Err(werr).Str("product", product).Str("flight", flight).Msg("toma aceptada por el sensor sin descuento en el libro de lotes")
			res.LedgerWarning = werr.Error()
		} else {
			res.Consumptions = got
		}
	}
	return res, nil
}

// PutOne registra la devolución de una unidad; el canasto nunca baja de cero.
// Sin corrida activa responde ErrNotTracked.
func (r *Run) PutOne(ctx context.Context, product string) (PutResult, error) {
	r.mu.Lock()
	s, ok := r.sensors[product]
	if !ok || !r.running.Load() {
		r.mu.Unlock()
		return PutResult{}, domain.ErrNotTracked
	}
	tr := s.PutOne(r.now())
	if r.basket[product] > 0 {
		r.basket[product]--
	}
	basket := r.basket[product]
	flight := r.flight
	r.mu.Unlock()

	snap := s.Snapshot()
	if tr.TurnedRed() {
		r.publish(ctx, flight, snap, ReasonChange)
	}
	return PutResult{ProductName: product, Signal: snap.Signal, UnitsRemaining: snap.UnitsRemaining, Basket: basket}, nil
}

// Observe reenvía una lectura cruda de báscula al sensor del producto.
func (r *Run) Observe(ctx context.Context, product string, weight float64) (Snapshot, error) {
	r.mu.RLock()
	s, ok := r.sensors[product]
	flight := r.flight
	r.mu.RUnlock()
	if !ok {
		return Snapshot{}, domain.ErrNotTracked
	}
	tr := s.Observe(weight, r.now())
	snap := s.Snapshot()
	if tr.TurnedRed() {
		r.publish(ctx, flight, snap, ReasonChange)
	}
	return snap, nil
}

// Sensor devuelve el sensor de un producto de la corrida actual.
func (r *Run) Sensor(product string) (*WeightSensor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sensors[product]
	return s, ok
}

// Status devuelve el estado de la corrida.
func (r *Run) Status() RunStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := RunStatus{
		FlightNumber: r.flight,
		Running:      r.running.Load(),
		StartedAt:    r.startedAt,
		SweepTicks:   r.ticks.Load(),
		Sensors:      make([]Snapshot, 0, len(r.sensors)),
		Basket:       make(map[string]int, len(r.basket)),
	}
	for _, s := range r.sensors {
		out.Sensors = append(out.Sensors, s.Snapshot())
	}
	sort.Slice(out.Sensors, func(i, j int) bool { return out.Sensors[i].ProductName < out.Sensors[j].ProductName })
	for k, v := range r.basket {
		out.Basket[k] = v
	}
	return out
}

// sweep revisa los sensores cada pollInterval hasta que se cancele ctx.
func (r *Run) sweep(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweepOnce(ctx)
		}
	}
}

func (r *Run) sweepOnce(ctx context.Context) {
	r.ticks.Inc()
	now := r.now()

	r.mu.RLock()
	sensors := make([]*WeightSensor, 0, len(r.sensors))
	for _, s := range r.sensors {
		sensors = append(sensors, s)
	}
	flight := r.flight
	r.mu.RUnlock()

	for _, s := range sensors {
		if ctx.Err() != nil {
			return
		}
		if tr := s.CheckTimeout(now, r.triggerTimeout); tr.TurnedRed() {
			r.publish(ctx, flight, s.Snapshot(), ReasonTimeout)
		}
	}
}

func (r *Run) publish(ctx context.Context, flight string, snap Snapshot, reason string) {
	ev := SignalEvent{
		FlightNumber:   flight,
		ProductName:    snap.ProductName,
		Signal:         snap.Signal,
		Reason:         reason,
		CurrentWeight:  snap.CurrentWeight,
		ExpectedWeight: snap.ExpectedWeight,
		UnitsRemaining: snap.UnitsRemaining,
		At:             r.now(),
	}
	if err := r.signals.Publish(ctx, ev); err != nil {
		r.log.Warn().Err(err).Str("product", snap.ProductName).Str("reason", reason).Msg("no se pudo publicar la señal")
	}
}
