package web

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/invoiceview/internal/clients"
	"github.com/vadiminshakov/invoiceview/internal/domain"
	"github.com/vadiminshakov/invoiceview/internal/events"
	"github.com/vadiminshakov/invoiceview/internal/metrics"
	"github.com/vadiminshakov/invoiceview/internal/services/view"
)

func setupTestServer(t *testing.T) (*Server, *view.View) {
	t.Helper()
	broadcaster := events.NewViewBroadcaster(4)
	collector := metrics.NewCollector("invoiceview")
	v := view.New(view.WithPublisher(broadcaster), view.WithRecorder(collector))
	v.Load(context.Background(), clients.NewStaticClient([]domain.Invoice{
		{ID: 1, UserName: domain.StringPtr("Ann"), Rub: decimal.NewNullDecimal(decimal.NewFromInt(50))},
		{ID: 2, UserName: domain.StringPtr("bob"), Rub: decimal.NewNullDecimal(decimal.NewFromInt(5))},
	}))

	return NewServer(":0", v, broadcaster, collector.Handler(), nil), v
}

func decodeSnapshot(t *testing.T, body *strings.Reader) domain.Snapshot {
	t.Helper()
	var snap domain.Snapshot
	require.NoError(t, json.NewDecoder(body).Decode(&snap))
	return snap
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func recordIDs(s domain.Snapshot) []int64 {
	out := make([]int64, 0, len(s.Records))
	for _, r := range s.Records {
		out = append(out, r.ID)
	}
	return out
}

func TestServer_Index(t *testing.T) {
	server, _ := setupTestServer(t)

	rec := do(t, server.Router(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `data-field="paymentMethodName"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestServer_IndexQueuesFilterRequests(t *testing.T) {
	server, _ := setupTestServer(t)

	body := do(t, server.Router(), httptest.NewRequest(http.MethodGet, "/", nil)).Body.String()

	assert.Contains(t, body, "filterEl.addEventListener('input', () => sendFilter(filterEl.value))")
	assert.Contains(t, body, "pendingFilter = text")
	assert.NotContains(t, body, "addEventListener('input', () => post(")
}

func TestServer_SequentialFiltersLastWins(t *testing.T) {
	server, v := setupTestServer(t)
	router := server.Router()

	updates := server.Broadcaster.Subscribe()
	defer server.Broadcaster.Unsubscribe(updates)

	var last domain.Snapshot
	for _, text := range []string{"a", "an", "ann"} {
		req := httptest.NewRequest(http.MethodPost, "/api/filter", strings.NewReader(`{"text":"`+text+`"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := do(t, router, req)
		require.Equal(t, http.StatusOK, rec.Code)
		last = decodeSnapshot(t, strings.NewReader(rec.Body.String()))
	}

	assert.Equal(t, "ann", last.Filter)
	assert.Equal(t, []int64{1}, recordIDs(last))
	assert.Equal(t, "ann", v.Snapshot().Filter)

	var published domain.Snapshot
	for len(updates) > 0 {
		published = <-updates
	}
	assert.Equal(t, "ann", published.Filter)
}

func TestServer_View(t *testing.T) {
	server, _ := setupTestServer(t)

	rec := do(t, server.Router(), httptest.NewRequest(http.MethodGet, "/api/view", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	snap := decodeSnapshot(t, strings.NewReader(rec.Body.String()))
	assert.False(t, snap.Loading)
	assert.Equal(t, 2, snap.Total)
	assert.Equal(t, []int64{1, 2}, recordIDs(snap))
	assert.Nil(t, snap.Sort.Key)
}

func TestServer_FilterAndSort(t *testing.T) {
	server, v := setupTestServer(t)
	router := server.Router()

	req := httptest.NewRequest(http.MethodPost, "/api/filter", strings.NewReader(`{"text":"an"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := do(t, router, req)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decodeSnapshot(t, strings.NewReader(rec.Body.String()))
	assert.Equal(t, []int64{1}, recordIDs(snap))
	assert.Equal(t, "an", snap.Filter)

	req = httptest.NewRequest(http.MethodPost, "/api/filter", strings.NewReader("text="))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = do(t, router, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{1, 2}, recordIDs(v.Snapshot()))

	rec = do(t, router, httptest.NewRequest(http.MethodPost, "/api/sort/rub", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	snap = decodeSnapshot(t, strings.NewReader(rec.Body.String()))
	assert.Equal(t, []int64{2, 1}, recordIDs(snap))
	require.NotNil(t, snap.Sort.Key)
	assert.Equal(t, domain.FieldRub, *snap.Sort.Key)
	assert.Equal(t, domain.Ascending, snap.Sort.Direction)

	rec = do(t, router, httptest.NewRequest(http.MethodPost, "/api/sort/rub", nil))
	snap = decodeSnapshot(t, strings.NewReader(rec.Body.String()))
	assert.Equal(t, []int64{1, 2}, recordIDs(snap))
	assert.Equal(t, domain.Descending, snap.Sort.Direction)
}

func TestServer_BadRequests(t *testing.T) {
	server, _ := setupTestServer(t)
	router := server.Router()

	rec := do(t, router, httptest.NewRequest(http.MethodPost, "/api/sort/bogus", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown invoice field")

	req := httptest.NewRequest(http.MethodPost, "/api/filter", strings.NewReader(`{"text":`))
	req.Header.Set("Content-Type", "application/json")
	rec = do(t, router, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, httptest.NewRequest(http.MethodGet, "/api/sort/rub", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_HealthAndMetrics(t *testing.T) {
	server, _ := setupTestServer(t)
	router := server.Router()

	rec := do(t, router, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, false, health["loading"])

	do(t, router, httptest.NewRequest(http.MethodPost, "/api/sort/holder", nil))
	rec = do(t, router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `invoiceview_sort_requests_total{field="holder"} 1`)
	assert.Contains(t, rec.Body.String(), `invoiceview_loads_total{result="success"} 1`)
}

func TestServer_ViewStream(t *testing.T) {
	server, v := setupTestServer(t)
	srv := httptest.NewServer(server.Router())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/view/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	next := func() domain.Snapshot {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if payload, ok := strings.CutPrefix(line, "data: "); ok {
				return decodeSnapshot(t, strings.NewReader(payload))
			}
		}
	}

	initial := next()
	assert.Equal(t, []int64{1, 2}, recordIDs(initial))

	v.SetFilter("bo")
	updated := next()
	assert.Equal(t, "bo", updated.Filter)
	assert.Equal(t, []int64{2}, recordIDs(updated))
}
