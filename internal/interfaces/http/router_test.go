package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockpilot-api/internal/application/auth"
	"github.com/jhoicas/stockpilot-api/internal/application/catalog"
	"github.com/jhoicas/stockpilot-api/internal/application/dto"
	appinv "github.com/jhoicas/stockpilot-api/internal/application/inventory"
	"github.com/jhoicas/stockpilot-api/internal/application/sensor"
	"github.com/jhoicas/stockpilot-api/internal/domain/entity"
	"github.com/jhoicas/stockpilot-api/internal/infrastructure/memory"
	"github.com/jhoicas/stockpilot-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/stockpilot-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type testServer struct {
	app      *fiber.App
	admin    string
	operador string
}

func fixedNow() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) }

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	catalogRepo := memory.NewCatalogRepository()
	require.NoError(t, catalogRepo.ReplaceAll(ctx,
		[]entity.Flight{{FlightNumber: "AM109", Origin: "MEX", Destination: "MAD", DepartureTime: "2025-06-01 10:00"}},
		[]entity.CatalogProduct{
			{FlightNumber: "AM109", ProductName: "Juice", CategoryQuantity: 10, UnitWeight: decimal.RequireFromString("0.5")},
			{FlightNumber: "AM109", ProductName: "Chips", CategoryQuantity: 3, UnitWeight: decimal.RequireFromString("0.07")},
			{FlightNumber: "AM109", ProductName: "Coca Cola", CategoryQuantity: 6, UnitWeight: decimal.RequireFromString("0.35")},
		}))
	catalogUC := catalog.NewCatalogUseCase(catalogRepo)

	ledger := appinv.NewLedger()
	lotUC := appinv.NewLotUseCase(ledger, fixedNow)
	reportUC := appinv.NewReportUseCase(ledger, pdf.NewMarotoPDFGenerator("test"), fixedNow, "Test")

	run := sensor.NewRun(sensor.Config{PollInterval: time.Hour, Stock: ledger})
	t.Cleanup(run.Stop)
	runUC := sensor.NewRunUseCase(run, catalogUC)

	authUC := auth.NewAuthUseCase(memory.NewUserRepository(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 5, Issuer: testIssuer})
	_, err := authUC.RegisterOperator("admin@stockpilot.io", "clave-admin-1", "Admin", entity.RoleAdmin)
	require.NoError(t, err)
	_, err = authUC.RegisterOperator("op@stockpilot.io", "clave-operador", "Operador", entity.RoleOperador)
	require.NoError(t, err)

	app := apphttp.NewApp("stockpilot-test", apphttp.RouterDeps{
		LotUC:     lotUC,
		ReportUC:  reportUC,
		RunUC:     runUC,
		CatalogUC: catalogUC,
		AuthUC:    authUC,
		JWTSecret: testJWTSecret,
	})

	s := &testServer{app: app}
	s.admin = s.login(t, "admin@stockpilot.io", "clave-admin-1")
	s.operador = s.login(t, "op@stockpilot.io", "clave-operador")
	return s
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.LoginResponse
	decode(t, resp, &out)
	return out.Token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var e dto.ErrorResponse
	decode(t, resp, &e)
	return e.Code
}

// ──────────────────────────────────────────────────────────────────────────────
// Público
// ──────────────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "admin@stockpilot.io", Password: "otra-clave"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, resp))

	resp = s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "nadie@stockpilot.io", Password: "x"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMe(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodGet, "/api/auth/me", s.operador, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me dto.UserResponse
	decode(t, resp, &me)
	assert.Equal(t, "op@stockpilot.io", me.Email)
	assert.Equal(t, entity.RoleOperador, me.Role)

	resp = s.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Inventario
// ──────────────────────────────────────────────────────────────────────────────

func TestInventario_SinToken(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/api/inventory", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// Caso 1: operador puede consultar pero no crear lotes.
func TestInventario_OperadorSoloLectura(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodGet, "/api/inventory/summary", s.operador, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/inventory/lots", s.operador, dto.CreateLotRequest{LotID: "L1", Quantity: 1, ExpiryDays: 3})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", errorCode(t, resp))
}

// Caso 2: escenario Juice completo por HTTP.
func TestInventario_RetiroFEFO(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPost, "/api/inventory/lots", s.admin, dto.CreateLotRequest{LotID: "L1", Quantity: 5, ExpiryDays: 3, ProductName: "Juice"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var lot dto.LotResponse
	decode(t, resp, &lot)
	assert.Equal(t, "short", lot.Band)
	assert.Len(t, lot.Units, 5)

	resp = s.do(t, http.MethodPost, "/api/inventory/lots", s.admin, dto.CreateLotRequest{LotID: "L2", Quantity: 10, ExpiryDays: 20, ProductName: "Juice"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/inventory/lots", s.admin, dto.CreateLotRequest{LotID: "L2", Quantity: 1, ExpiryDays: 20, ProductName: "Juice"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/inventory/withdrawals", s.admin, dto.WithdrawRequest{ProductName: "Juice", Count: 7})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.WithdrawResponse
	decode(t, resp, &out)
	require.Len(t, out.Consumptions, 2)
	assert.Equal(t, "L1", out.Consumptions[0].LotID)
	assert.Equal(t, 5, out.Consumptions[0].UnitsTaken)
	assert.Equal(t, "L2", out.Consumptions[1].LotID)
	assert.Equal(t, 2, out.Consumptions[1].UnitsTaken)

	resp = s.do(t, http.MethodGet, "/api/inventory/lots/L1", s.operador, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/inventory/lots/L2", s.operador, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &lot)
	assert.Equal(t, 8, lot.Quantity)

	// Todo o nada: 9 > 8 disponibles.
	resp = s.do(t, http.MethodPost, "/api/inventory/withdrawals", s.admin, dto.WithdrawRequest{ProductName: "Juice", Count: 9})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", errorCode(t, resp))

	resp = s.do(t, http.MethodPost, "/api/inventory/withdrawals", s.admin, dto.WithdrawRequest{ProductName: "Juice", Count: 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, resp))

	var summary dto.InventorySummary
	resp = s.do(t, http.MethodGet, "/api/inventory/summary", s.operador, nil)
	decode(t, resp, &summary)
	assert.Equal(t, 8, summary.TotalProducts)
	assert.Equal(t, 1, summary.TotalLots)
	assert.Equal(t, 8, summary.Bands["distant"])
}

func TestInventario_Delete(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodPost, "/api/inventory/lots", s.admin, dto.CreateLotRequest{LotID: "S1", Quantity: 2, ExpiryDays: 10, ProductName: "Soda"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var lot dto.LotResponse
	decode(t, resp, &lot)

	resp = s.do(t, http.MethodDelete, "/api/inventory/lots/"+lot.Units[0].UnitID, s.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var del dto.DeleteResponse
	decode(t, resp, &del)
	assert.Equal(t, 1, del.RemainingInventory)

	resp = s.do(t, http.MethodDelete, "/api/inventory/lots/S1", s.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodDelete, "/api/inventory/lots/S1", s.admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestInventario_ListadosYRotacion(t *testing.T) {
	s := newTestServer(t)
	for _, in := range []dto.CreateLotRequest{
		{LotID: "B", Quantity: 1, ExpiryDays: 20, ProductName: "Juice"},
		{LotID: "A", Quantity: 2, ExpiryDays: 2, ProductName: "Juice"},
	} {
		resp := s.do(t, http.MethodPost, "/api/inventory/lots", s.admin, in)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := s.do(t, http.MethodPost, "/api/inventory/rotation", s.admin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var grouped []dto.ProductInventory
	resp = s.do(t, http.MethodGet, "/api/inventory/by-product", s.operador, nil)
	decode(t, resp, &grouped)
	require.Len(t, grouped, 1)
	assert.Equal(t, 3, grouped[0].TotalQuantity)
	assert.Equal(t, "A", grouped[0].Lots[0].LotID)

	var list struct {
		Total     int                 `json:"total"`
		Inventory []dto.InventoryItem `json:"inventory"`
	}
	resp = s.do(t, http.MethodGet, "/api/inventory", s.operador, nil)
	decode(t, resp, &list)
	assert.Equal(t, 3, list.Total)
	assert.Len(t, list.Inventory, 3)
}

func TestInventario_Paginado(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodPost, "/api/inventory/lots", s.admin, dto.CreateLotRequest{LotID: "P", Quantity: 5, ExpiryDays: 9, ProductName: "Chips"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var list struct {
		Total     int                 `json:"total"`
		Inventory []dto.InventoryItem `json:"inventory"`
		Page      dto.PageResponse    `json:"page"`
	}
	resp = s.do(t, http.MethodGet, "/api/inventory?limit=2&offset=4", s.operador, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &list)
	assert.Equal(t, 5, list.Total)
	assert.Len(t, list.Inventory, 1)
	assert.Equal(t, dto.PageResponse{Limit: 2, Offset: 4, Total: 5}, list.Page)

	resp = s.do(t, http.MethodGet, "/api/inventory?limit=-1", s.operador, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, resp))
}

func TestInventario_ReportePDF(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/api/inventory/report.pdf", s.operador, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Vuelos y corrida
// ──────────────────────────────────────────────────────────────────────────────

func TestVuelos(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodGet, "/api/flights", s.operador, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var products []dto.FlightProductResponse
	resp = s.do(t, http.MethodGet, "/api/flights/AM109", s.operador, nil)
	decode(t, resp, &products)
	assert.Len(t, products, 3)

	resp = s.do(t, http.MethodGet, "/api/flights/XX000", s.operador, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCorrida_Completa(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPost, "/api/run/start/XX000", s.operador, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/run/start/AM109", s.operador, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Sin lotes: el sensor acepta la toma y el libro avisa.
	resp = s.do(t, http.MethodPost, "/api/run/take_one/Juice", s.operador, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var action dto.RunActionResponse
	decode(t, resp, &action)
	assert.Equal(t, "green", action.Signal)
	assert.NotEmpty(t, action.Warning)

	// Nombre con espacio en la ruta.
	resp = s.do(t, http.MethodPost, "/api/run/put_one/Coca%20Cola", s.operador, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/run/take_one/Water", s.operador, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "SENSOR_NOT_FOUND", errorCode(t, resp))

	for i := 0; i < 3; i++ {
		resp = s.do(t, http.MethodPost, "/api/run/take_one/Chips", s.operador, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp = s.do(t, http.MethodPost, "/api/run/take_one/Chips", s.operador, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "NO_STOCK", errorCode(t, resp))

	resp = s.do(t, http.MethodPost, "/api/run/readings/Juice", s.operador, dto.ReadingRequest{Weight: decimal.RequireFromString("3.58")})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sensorStatus dto.SensorStatus
	decode(t, resp, &sensorStatus)
	assert.Equal(t, "red", sensorStatus.Signal)

	var status dto.RunStatusResponse
	resp = s.do(t, http.MethodGet, "/api/run/status", s.operador, nil)
	decode(t, resp, &status)
	assert.True(t, status.Running)
	assert.Equal(t, "AM109", status.FlightNumber)
	assert.Equal(t, 3, status.Basket["Chips"])
	assert.Equal(t, 0, status.Sensors["Chips"].UnitsRemaining)

	resp = s.do(t, http.MethodPost, "/api/run/stop", s.operador, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = s.do(t, http.MethodGet, "/api/run/status", s.operador, nil)
	decode(t, resp, &status)
	assert.False(t, status.Running)
}

// El vuelo y los productos de la corrida sobreviven a peticiones posteriores.
func TestCorrida_ParametrosNoSeReutilizan(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPost, "/api/run/start/AM109", s.operador, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = s.do(t, http.MethodPost, "/api/run/take_one/Juice", s.operador, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	paths := []string{"/api/flights", "/api/flights/AM109", "/api/inventory", "/api/inventory/by-product", "/api/run/readings/Water"}
	for i := 0; i < 40; i++ {
		path := paths[i%len(paths)]
		method := http.MethodGet
		var body interface{}
		if path == "/api/run/readings/Water" {
			method = http.MethodPost
			body = dto.ReadingRequest{Weight: decimal.RequireFromString("1")}
		}
		s.do(t, method, path, s.operador, body)
	}

	var status dto.RunStatusResponse
	resp = s.do(t, http.MethodGet, "/api/run/status", s.operador, nil)
	decode(t, resp, &status)
	assert.Equal(t, "AM109", status.FlightNumber)
	assert.Equal(t, map[string]int{"Juice": 1, "Chips": 0, "Coca Cola": 0}, status.Basket)
	for _, name := range []string{"Juice", "Chips", "Coca Cola"} {
		assert.Contains(t, status.Sensors, name)
	}
}

// Caso 3: la toma en la corrida descuenta del libro de lotes en orden FEFO.
func TestCorrida_DescuentaDelInventario(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodPost, "/api/inventory/lots", s.admin, dto.CreateLotRequest{LotID: "L1", Quantity: 1, ExpiryDays: 3, ProductName: "Juice"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = s.do(t, http.MethodPost, "/api/run/start/AM109", s.operador, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/run/take_one/Juice", s.operador, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var action dto.RunActionResponse
	decode(t, resp, &action)
	assert.Empty(t, action.Warning)
	require.Len(t, action.Consumptions, 1)
	assert.Equal(t, "L1", action.Consumptions[0].LotID)

	resp = s.do(t, http.MethodGet, "/api/inventory/lots/L1", s.operador, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
