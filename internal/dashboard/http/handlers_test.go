package dashboardhttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlux/carlux-inventory/internal/catalog"
	"github.com/carlux/carlux-inventory/internal/dashboard"
	"github.com/carlux/carlux-inventory/internal/listing"
	"github.com/carlux/carlux-inventory/internal/platform/httpx"
	"github.com/carlux/carlux-inventory/internal/shared"
	"github.com/carlux/carlux-inventory/internal/view"
)

type stubFetcher struct {
	mu    sync.Mutex
	calls int
	resp  catalog.Response
	err   error
}

func (f *stubFetcher) Fetch(ctx context.Context) (catalog.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.resp, f.err
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func vehicles() catalog.Response {
	total := 2
	brand := "Tesla"
	return catalog.Response{
		Products: []catalog.Product{
			{ID: 1, Title: "Tesla Model 3", Price: 40000, Brand: &brand, Images: []string{}},
			{ID: 2, Title: "Ford F-150", Price: 55000, Images: []string{}},
		},
		Total: &total,
	}
}

type testEnv struct {
	handler  *Handler
	registry *dashboard.Registry
	fetcher  *stubFetcher
	router   chi.Router
}

func newTestEnv(t *testing.T, fetcher *stubFetcher) *testEnv {
	t.Helper()
	templates, err := view.NewEngine()
	require.NoError(t, err)
	registry := dashboard.NewRegistry(func() *dashboard.Shell {
		return dashboard.New(fetcher, dashboard.Options{SearchDelay: 10 * time.Millisecond})
	}, time.Minute, nil, nil)
	t.Cleanup(registry.Close)

	handler := NewHandler(nil, registry, templates, shared.NewCSRFManager("test-secret"))
	router := chi.NewRouter()
	handler.MountRoutes(router)
	handler.MountAPI(router)
	return &testEnv{handler: handler, registry: registry, fetcher: fetcher, router: router}
}

func (e *testEnv) do(t *testing.T, sess *shared.Session, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	if sess != nil {
		req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) settle(t *testing.T, sess *shared.Session) *dashboard.Shell {
	t.Helper()
	shell := e.registry.Get(sess.ID, nil)
	require.NotNil(t, shell)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, shell.Wait(ctx))
	return shell
}

func postForm(path string, form url.Values, scripted bool) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if scripted {
		req.Header.Set("X-Requested-With", "fetch")
	}
	return req
}

func decodePayload(t *testing.T, rr *httptest.ResponseRecorder) inventoryPayload {
	t.Helper()
	var payload inventoryPayload
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	return payload
}

func payloadTitles(p inventoryPayload) []string {
	out := make([]string, 0, len(p.Products))
	for _, product := range p.Products {
		out = append(out, product.Title)
	}
	return out
}

func TestPageRendersDashboard(t *testing.T) {
	env := newTestEnv(t, &stubFetcher{resp: vehicles()})
	sess := &shared.Session{ID: "viewer-1"}
	env.settle(t, sess)

	rr := env.do(t, sess, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "<title>Carlux Inventory</title>")
	assert.Contains(t, body, "View and filter the current vehicle inventory")
	assert.Contains(t, body, `placeholder="Search by title..."`)
	assert.Contains(t, body, "Price: Low to High")
	assert.Contains(t, body, "Vehicle Management")
	assert.Contains(t, body, "Tesla Model 3")
	assert.Contains(t, body, "$40,000")

	token, err := shared.NewCSRFManager("test-secret").Token(sess)
	require.NoError(t, err)
	assert.Contains(t, body, token)
}

func TestGridFragmentShowsCounters(t *testing.T) {
	env := newTestEnv(t, &stubFetcher{resp: vehicles()})
	sess := &shared.Session{ID: "viewer-1"}
	env.settle(t, sess)

	rr := env.do(t, sess, httptest.NewRequest(http.MethodGet, "/inventory/grid", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `data-branch="grid"`)
	assert.Contains(t, body, "<strong>2</strong> shown")
	assert.Contains(t, body, "of 2 vehicles")
	assert.NotContains(t, body, "<html")
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
}

func TestGridFragmentShowsFailure(t *testing.T) {
	env := newTestEnv(t, &stubFetcher{err: &catalog.HTTPError{Status: 500}})
	sess := &shared.Session{ID: "viewer-1"}
	env.settle(t, sess)

	rr := env.do(t, sess, httptest.NewRequest(http.MethodGet, "/inventory/grid", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `data-branch="error"`)
	assert.Contains(t, body, "Could not load inventory")
	assert.Contains(t, body, "Failed to load inventory (500)")
	assert.Contains(t, body, `action="/inventory/retry"`)
}

func TestScriptedSearchWaitsForDebounce(t *testing.T) {
	env := newTestEnv(t, &stubFetcher{resp: vehicles()})
	sess := &shared.Session{ID: "viewer-1"}
	env.settle(t, sess)

	rr := env.do(t, sess, postForm("/inventory/search", url.Values{"q": {"ford"}}, true))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	require.Eventually(t, func() bool {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/inventory", nil)
		env.router.ServeHTTP(rr, req.WithContext(shared.ContextWithSession(req.Context(), sess)))
		var payload inventoryPayload
		return json.Unmarshal(rr.Body.Bytes(), &payload) == nil && payload.Shown == 1
	}, time.Second, 5*time.Millisecond)

	rr = env.do(t, sess, httptest.NewRequest(http.MethodGet, "/api/inventory", nil))
	payload := decodePayload(t, rr)
	assert.Equal(t, "ford", payload.Query)
	assert.Equal(t, []string{"Ford F-150"}, payloadTitles(payload))
}

func TestFormSearchAppliesImmediately(t *testing.T) {
	env := newTestEnv(t, &stubFetcher{resp: vehicles()})
	sess := &shared.Session{ID: "viewer-1"}
	env.settle(t, sess)

	rr := env.do(t, sess, postForm("/inventory/search", url.Values{"q": {"zzz"}}, false))
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	rr = env.do(t, sess, httptest.NewRequest(http.MethodGet, "/inventory/grid", nil))
	body := rr.Body.String()
	assert.Contains(t, body, `data-branch="empty"`)
	assert.Contains(t, body, "No vehicles match your search.")
}

func TestSortStoresPreference(t *testing.T) {
	env := newTestEnv(t, &stubFetcher{resp: vehicles()})
	sess := &shared.Session{ID: "viewer-1"}
	env.settle(t, sess)

	rr := env.do(t, sess, postForm("/inventory/sort", url.Values{"sort": {"price-desc"}}, true))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "price-desc", sess.Get(shared.SortPreferenceKey))

	rr = env.do(t, sess, httptest.NewRequest(http.MethodGet, "/api/inventory", nil))
	payload := decodePayload(t, rr)
	assert.Equal(t, listing.SortPriceDesc, payload.Sort)
	assert.Equal(t, []string{"Ford F-150", "Tesla Model 3"}, payloadTitles(payload))
}

func TestNewShellStartsWithStoredSort(t *testing.T) {
	env := newTestEnv(t, &stubFetcher{resp: vehicles()})
	sess := &shared.Session{ID: "viewer-2"}
	sess.Set(shared.SortPreferenceKey, "price-asc")

	rr := env.do(t, sess, httptest.NewRequest(http.MethodGet, "/api/inventory?wait=1", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	payload := decodePayload(t, rr)
	assert.Equal(t, listing.SortPriceAsc, payload.Sort)
	assert.Equal(t, "success", payload.Status)
	assert.Equal(t, []string{"Tesla Model 3", "Ford F-150"}, payloadTitles(payload))
}

func TestUnknownSortFallsBackToDefault(t *testing.T) {
	env := newTestEnv(t, &stubFetcher{resp: vehicles()})
	sess := &shared.Session{ID: "viewer-1"}
	env.settle(t, sess)

	rr := env.do(t, sess, postForm("/inventory/sort", url.Values{"sort": {"rating"}}, false))
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "default", sess.Get(shared.SortPreferenceKey))
}

func TestRetryRefetches(t *testing.T) {
	fetcher := &stubFetcher{resp: vehicles()}
	env := newTestEnv(t, fetcher)
	sess := &shared.Session{ID: "viewer-1"}
	env.settle(t, sess)
	require.Equal(t, 1, fetcher.callCount())

	rr := env.do(t, sess, postForm("/inventory/retry", url.Values{}, true))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	env.settle(t, sess)
	assert.Equal(t, 2, fetcher.callCount())
}

func TestAPIPreviewDoesNotChangeShell(t *testing.T) {
	env := newTestEnv(t, &stubFetcher{resp: vehicles()})
	sess := &shared.Session{ID: "viewer-1"}
	env.settle(t, sess)

	rr := env.do(t, sess, httptest.NewRequest(http.MethodGet, "/api/inventory?q=TESLA&sort=price-desc", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	payload := decodePayload(t, rr)
	assert.Equal(t, []string{"Tesla Model 3"}, payloadTitles(payload))
	require.NotNil(t, payload.Total)
	assert.Equal(t, 2, *payload.Total)

	rr = env.do(t, sess, httptest.NewRequest(http.MethodGet, "/api/inventory", nil))
	payload = decodePayload(t, rr)
	assert.Equal(t, 2, payload.Shown)
	assert.Equal(t, listing.SortDefault, payload.Sort)
}

func TestAPIFailureIsProblem(t *testing.T) {
	env := newTestEnv(t, &stubFetcher{err: &catalog.HTTPError{Status: 503}})
	sess := &shared.Session{ID: "viewer-1"}

	rr := env.do(t, sess, httptest.NewRequest(http.MethodGet, "/api/inventory?wait=true", nil))
	require.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
	assert.Contains(t, problem.Detail, "Failed to load inventory (503)")
}

func TestMissingSessionIsRejected(t *testing.T) {
	env := newTestEnv(t, &stubFetcher{resp: vehicles()})

	rr := env.do(t, nil, httptest.NewRequest(http.MethodGet, "/inventory/grid", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, nil, httptest.NewRequest(http.MethodGet, "/api/inventory", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, 0, env.registry.Len())
}

func TestClosedRegistryIsUnavailable(t *testing.T) {
	env := newTestEnv(t, &stubFetcher{resp: vehicles()})
	env.registry.Close()

	rr := env.do(t, &shared.Session{ID: "viewer-1"}, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestPageRendersSearchSettleDelay(t *testing.T) {
	env := newTestEnv(t, &stubFetcher{resp: vehicles()})
	sess := &shared.Session{ID: "viewer-1"}
	env.settle(t, sess)

	rr := env.do(t, sess, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `data-settle-ms="10"`)
	assert.Contains(t, rr.Body.String(), `data-applied-query=""`)

	env.do(t, sess, postForm("/inventory/search", url.Values{"q": {"ford"}}, false))
	rr = env.do(t, sess, httptest.NewRequest(http.MethodGet, "/inventory/grid", nil))
	assert.Contains(t, rr.Body.String(), `data-applied-query="ford"`)
}

func TestAPIPreviewKeepsCurrentSort(t *testing.T) {
	env := newTestEnv(t, &stubFetcher{resp: vehicles()})
	sess := &shared.Session{ID: "viewer-1"}
	env.settle(t, sess)

	rr := env.do(t, sess, postForm("/inventory/sort", url.Values{"sort": {"price-desc"}}, true))
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = env.do(t, sess, httptest.NewRequest(http.MethodGet, "/api/inventory?q=o", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	payload := decodePayload(t, rr)
	assert.Equal(t, listing.SortPriceDesc, payload.Sort)
	assert.Equal(t, []string{"Ford F-150", "Tesla Model 3"}, payloadTitles(payload))
}

func TestAPIPreviewKeepsCurrentSearch(t *testing.T) {
	env := newTestEnv(t, &stubFetcher{resp: vehicles()})
	sess := &shared.Session{ID: "viewer-1"}
	env.settle(t, sess)

	rr := env.do(t, sess, postForm("/inventory/search", url.Values{"q": {"ford"}}, false))
	require.Equal(t, http.StatusSeeOther, rr.Code)

	rr = env.do(t, sess, httptest.NewRequest(http.MethodGet, "/api/inventory?sort=price-asc", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	payload := decodePayload(t, rr)
	assert.Equal(t, "ford", payload.Query)
	assert.Equal(t, listing.SortPriceAsc, payload.Sort)
	assert.Equal(t, []string{"Ford F-150"}, payloadTitles(payload))
}

func TestAPIRejectsMalformedWait(t *testing.T) {
	env := newTestEnv(t, &stubFetcher{resp: vehicles()})
	sess := &shared.Session{ID: "viewer-1"}

	rr := env.do(t, sess, httptest.NewRequest(http.MethodGet, "/api/inventory?wait=maybe", nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
	assert.Contains(t, problem.Detail, `"maybe"`)
}

func TestMalformedFormIsBadRequest(t *testing.T) {
	env := newTestEnv(t, &stubFetcher{resp: vehicles()})
	sess := &shared.Session{ID: "viewer-1"}

	req := httptest.NewRequest(http.MethodPost, "/inventory/search", strings.NewReader("q=%zz"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := env.do(t, sess, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 0, env.registry.Len())
}

func TestUnknownAPIPathIsProblem(t *testing.T) {
	env := newTestEnv(t, &stubFetcher{resp: vehicles()})

	rr := env.do(t, nil, httptest.NewRequest(http.MethodGet, "/api/vehicles", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
}
