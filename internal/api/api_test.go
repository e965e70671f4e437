package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ParkLedger/internal/eventloop"
	"ParkLedger/internal/export"
	"ParkLedger/internal/finalize"
	"ParkLedger/internal/ledger"
	"ParkLedger/internal/metrics"
	"ParkLedger/internal/model"
	"ParkLedger/internal/scheduler"
	"ParkLedger/internal/service"
	"ParkLedger/internal/store"
	"ParkLedger/internal/working"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	now := func() time.Time { return time.Date(2024, 2, 23, 14, 0, 0, 0, time.UTC) }
	loop := eventloop.New(16)
	go loop.Run(ctx)

	backend := store.NewMemoryBackend()
	m := metrics.New()
	cache := working.NewCache("", working.DefaultTemplates(), now)
	svc := service.New(service.Deps{
		Loop:     loop,
		Ledger:   ledger.Open(ctx, backend, time.UTC, m),
		Cache:    cache,
		Rollover: scheduler.NewRollover(ctx, 17, cache, backend),
		Banner:   finalize.NewBanner(3 * time.Second),
		Metrics:  m,
		Location: time.UTC,
		Now:      now,
	})
	return NewRouter(NewHandler(svc), m)
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

const poolSheet = `{
	"sales": {
		"items": [
			{"label": "Piscine", "quantity": 299, "unit_price": 500},
			{"label": "Forfait Piscine", "quantity": "18", "unit_price": "4 500"},
			{"label": "Visite", "quantity": "", "unit_price": 200},
			{"label": "Baby-foot", "quantity": null, "unit_price": 100}
		],
		"mobile_money": {"orange": "20000", "wave": 10000},
		"expenses": ""
	}
}`

func TestGetWorking_TemplateByAlias(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/api/modules/bracelets/working", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "wristbands", body["kind"])
	rows := body["wristbands"].(map[string]interface{})["rows"].([]interface{})
	assert.Len(t, rows, 2)

	rec = do(t, r, http.MethodGet, "/api/modules/arcade/working", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decode(t, rec)["detail"], "unknown module kind")
}

func TestPutWorking_BlankNumbersThenDeposit(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodPut, "/api/modules/pool/working", poolSheet)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, r, http.MethodGet, "/api/deposit", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "200500", body["cash"])
	assert.Equal(t, "20000", body["orange_money"])
	assert.Equal(t, "10000", body["wave_pay"])
	assert.Equal(t, "230500", body["total"])
}

func TestPutWorking_RejectsText(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodPut, "/api/modules/snackbar/working",
		`{"sales": {"items": [{"label": "Sachet", "quantity": "douze", "unit_price": 200}]}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decode(t, rec)["fields"].(map[string]interface{})
	assert.Equal(t, "not a number", fields["items[0].quantity"])

	rec = do(t, r, http.MethodPut, "/api/modules/snackbar/working", `{"wristbands": {"rows": []}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, r, http.MethodPut, "/api/modules/snackbar/working", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestToState_OversizedCounts(t *testing.T) {
	tests := []struct {
		name  string
		kind  model.ModuleKind
		body  string
		field string
		want  string
	}{
		{"quantity past int64", model.KindPool,
			`{"sales": {"items": [{"label": "Piscine", "quantity": "18446744073709551617", "unit_price": 500}]}}`,
			"items[0].quantity", "out of range"},
		{"negative quantity past int64", model.KindPool,
			`{"sales": {"items": [{"label": "Piscine", "quantity": -18446744073709551617, "unit_price": 500}]}}`,
			"items[0].quantity", "out of range"},
		{"stock_in past int64", model.KindWristbands,
			`{"wristbands": {"rows": [{"id": 1, "color": "Bleu", "stock_in": "9223372036854775808", "stock_out": 0}]}}`,
			"rows[0].stock_in", "out of range"},
		{"fraction", model.KindPool,
			`{"sales": {"items": [{"label": "Piscine", "quantity": "1,5", "unit_price": 500}]}}`,
			"items[0].quantity", "not a whole number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req WorkingStateRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			st, fields := req.ToState(tt.kind)
			assert.Equal(t, tt.want, fields[tt.field])
			if st.Sales != nil {
				assert.True(t, st.Sales.Gross().IsZero(), st.Sales.Gross().String())
			}
		})
	}

	var req WorkingStateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"sales": {"items": [{"label": "Piscine", "quantity": "9223372036854775807", "unit_price": 1}]}}`), &req))
	st, fields := req.ToState(model.KindPool)
	assert.Empty(t, fields)
	assert.Equal(t, int64(9223372036854775807), st.Sales.Items[0].Quantity)
}

func TestPutWorking_RejectsOversizedQuantity(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodPut, "/api/modules/pool/working",
		`{"sales": {"items": [{"label": "Piscine", "quantity": "18446744073709551617", "unit_price": 500}]}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	fields := decode(t, rec)["fields"].(map[string]interface{})
	assert.Equal(t, "out of range", fields["items[0].quantity"])

	rec = do(t, r, http.MethodGet, "/api/deposit", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", decode(t, rec)["total"])
}

func TestFinalize_EmptyBodyUsesSnapshot(t *testing.T) {
	r := newTestRouter(t)
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPut, "/api/modules/pool/working", poolSheet).Code)

	rec := do(t, r, http.MethodPost, "/api/modules/pool/finalize", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	report := body["report"].(map[string]interface{})
	assert.Equal(t, "230500", report["gross_total"])
	assert.Equal(t, "200500", report["deposit_amount"])
	assert.Equal(t, "200500", report["cash_total"])
	ack := body["acknowledgement"].(map[string]interface{})
	assert.Equal(t, "2024-02-23", ack["date_key"])

	rec = do(t, r, http.MethodGet, "/api/history/2024-02-23", "")
	require.Equal(t, http.StatusOK, rec.Code)
	day := decode(t, rec)
	assert.Equal(t, "23 février 2024", day["display_date"])
	assert.Equal(t, "230500", day["day_total"])

	rec = do(t, r, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, decode(t, rec)["banner"])

	rec = do(t, r, http.MethodGet, "/api/history/2024-02-23/journal", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestFinalize_InvalidInput(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/api/modules/apparel/finalize",
		`{"sales": {"items": [{"label": "Homme", "quantity": -2, "unit_price": 1000}], "expenses": "-5"}}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	fields := decode(t, rec)["fields"].(map[string]interface{})
	assert.Contains(t, fields, "Expenses")
	assert.Contains(t, fields, "Items[0].Quantity")

	rec = do(t, r, http.MethodGet, "/api/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestHistory_Lookups(t *testing.T) {
	r := newTestRouter(t)

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/api/history/hier", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/api/history/2024-01-01", "").Code)
}

func TestExport_Workbook(t *testing.T) {
	r := newTestRouter(t)
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/api/modules/pool/finalize", poolSheet).Code)

	rec := do(t, r, http.MethodGet, "/api/export.xlsx", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "journal-")
	assert.NotZero(t, rec.Body.Len())
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["ok"])

	rec = do(t, r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `park_ledger_http_requests_total{method="GET",path="/healthz",status="200"} 1`)
}
