package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"books-storefront/internal/client"
	"books-storefront/internal/config"
	"books-storefront/internal/logging"
	"books-storefront/internal/model"
	"books-storefront/internal/opener"
	"books-storefront/internal/page"
	"books-storefront/internal/repository"
	"books-storefront/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu       sync.Mutex
	payCalls int
	payReply string
	uploads  []map[string]string
}

func (b *fakeBackend) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["password"] != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"success":false,"error":"Invalid credentials"}`)
			return
		}
		_, _ = io.WriteString(w, `{"success":true,"user":{"id":1,"username":"`+req["username"]+`","email":"jane@x.com","is_admin":true}}`)
	})
	mux.HandleFunc("/api/resources", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"books":[{"id":42,"title":"Maths","cover":null}],"papers":[{"id":43,"title":"KCSE"}],"setbooks":[],"all":[]}`)
	})
	mux.HandleFunc("/api/users", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"count":3}`)
	})
	mux.HandleFunc("/api/pay", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.payCalls++
		reply := b.payReply
		b.mu.Unlock()
		_, _ = io.WriteString(w, reply)
	})
	mux.HandleFunc("/api/upload", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		b.mu.Lock()
		b.uploads = append(b.uploads, map[string]string{
			"resourceType": r.FormValue("resourceType"),
			"subject":      r.FormValue("subject"),
			"title":        r.FormValue("title"),
		})
		b.mu.Unlock()
		_, _ = io.WriteString(w, `{"success":true}`)
	})
	return mux
}

type testEnv struct {
	srv     *Server
	backend *fakeBackend
	txns    repository.TransactionRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	b := &fakeBackend{payReply: `{"success":true,"payment_url":"https://pay.example/checkout","orderTrackingId":"trk1"}`}
	api := httptest.NewServer(b.handler(t))
	t.Cleanup(api.Close)

	db, err := client.InitStoreClient(&config.Store{Driver: "sqlite", DSN: "file::memory:"})
	require.NoError(t, err)

	logger := logging.Discard()
	market := client.NewMarketplaceClient(&config.API{BaseURL: api.URL + "/api"})
	storage := repository.NewStorageRepository(db)
	txns := repository.NewTransactionRepository(db)
	cache := repository.NewResourceCacheRepository(db)
	require.NoError(t, cache.Seed(context.Background()))

	paymentCfg := &config.Payment{
		TestMarker:     "Test payment",
		SuccessPageURL: "/download-success",
		DownloadURL:    "https://books.example/api/download",
	}
	price := model.MustAmount("100")

	sessions := service.NewSessionService(market, storage, logger)
	catalog := service.NewCatalogService(market, cache, &config.Catalog{
		PlaceholderCover:  "assets/placeholder.jpg",
		StaticCoverPrefix: "static/covers/",
		LocalAssetPrefix:  "assets/",
	}, price, "Ksh", logger)
	payments := service.NewPaymentCoordinator(market, sessions, opener.NewPage(logger), txns, paymentCfg, price, logger)
	controller := page.NewController(sessions, catalog, payments, logger)
	require.NoError(t, controller.Init(context.Background()))

	srv := NewServer(controller, sessions,
		service.NewAdminService(market, logger),
		service.NewDownloadService(paymentCfg.DownloadURL, txns, logger),
		logger)
	return &testEnv{srv: srv, backend: b, txns: txns}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStorefrontPage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/html")
	assert.Contains(t, rec.Body.String(), `id="download-form"`)
	assert.Contains(t, rec.Body.String(), `src="app.js"`)

	rec = env.do(t, http.MethodGet, "/app.js", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "window.open(outcome.payment_url, '_blank')")
	assert.Contains(t, rec.Body.String(), "'/download/submit'")

	// API routes win over the page's catch-all
	rec = env.do(t, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/missing.js", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// the page's relative download link lands on the redirect, not on a static file
	rec = env.do(t, http.MethodGet, "/download-success.html?resource_id=42&email=jane%40x.com&orderTrackingId=trk1", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://books.example/api/download?resource_id=42&email=jane%40x.com&orderTrackingId=trk1", rec.Header().Get("Location"))
}

func TestDownloadRequiresSignIn(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/download/42", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Please sign in to download resources.", body["error"])
	assert.Equal(t, "Unauthenticated", body["kind"])

	view := decodeBody(t, env.do(t, http.MethodGet, "/api/view", ""))
	assert.Equal(t, "open", view["modals"].(map[string]any)["signin"])
	assert.Zero(t, env.backend.payCalls)
}

func TestExternalPaymentFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/session/signin", `{"username":"jane","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/download/42", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/download/submit", `{"name":"Jane","email":"jane@x.com","phone":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please fill in all fields.", decodeBody(t, rec)["error"])
	assert.Zero(t, env.backend.payCalls)

	rec = env.do(t, http.MethodPost, "/api/download/submit", `{"name":"Jane","email":"jane@x.com","phone":"0712345678"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decodeBody(t, rec)
	assert.Equal(t, "https://pay.example/checkout", out["payment_url"])
	assert.Equal(t, "/download-success?resource_id=42&email=jane%40x.com&orderTrackingId=trk1", out["link"])
	assert.Equal(t, "AwaitingUserReturn", out["state"])

	rec = env.do(t, http.MethodGet, out["link"].(string), "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://books.example/api/download?resource_id=42&email=jane%40x.com&orderTrackingId=trk1", rec.Header().Get("Location"))

	txn, err := env.txns.FindByTrackingID(context.Background(), "trk1")
	require.NoError(t, err)
	assert.NotNil(t, txn.FollowedAt)

	rec = env.do(t, http.MethodDelete, "/api/download", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	view := decodeBody(t, env.do(t, http.MethodGet, "/api/view", ""))
	assert.Equal(t, "Idle", view["payment_state"])
	assert.Nil(t, view["intent"])
}

func TestDownloadSuccessMissingParams(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/download-success?resource_id=42", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignInFailure(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/session/signin", `{"username":"jane","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", decodeBody(t, rec)["error"])
}

func TestResourcesAndFind(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/resources", "")
	require.Equal(t, http.StatusOK, rec.Code)
	listing := decodeBody(t, rec)
	books := listing["books"].([]any)
	require.Len(t, books, 1)
	assert.Equal(t, "assets/placeholder.jpg", books[0].(map[string]any)["cover_url"])
	assert.Equal(t, "Ksh 100", books[0].(map[string]any)["price_tag"])

	rec = env.do(t, http.MethodPost, "/api/find", `{"class":"form1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please select both class and subject", decodeBody(t, rec)["error"])

	rec = env.do(t, http.MethodGet, "/api/classes/grade4/subjects", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/classes/year9/subjects", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestModalRoutes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/modals/signin/open", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/modals/register/switch", "")
	require.Equal(t, http.StatusOK, rec.Code)
	modals := decodeBody(t, rec)
	assert.Equal(t, "closed", modals["signin"])
	assert.Equal(t, "open", modals["register"])

	rec = env.do(t, http.MethodPost, "/api/modals/cart/open", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRoutes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/admin/stats", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/admin/login", `{"username":"admin","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/admin/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"books":1,"papers":1,"setbooks":0,"users":3}`, rec.Body.String())

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("resourceType", "paper"))
	require.NoError(t, w.WriteField("classGrade", "form4"))
	require.NoError(t, w.WriteField("subject", "Home Science"))
	require.NoError(t, w.WriteField("title", "Mock 2024"))
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/admin/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec = httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.Len(t, env.backend.uploads, 1)
	assert.Equal(t, "home-science", env.backend.uploads[0]["subject"])
	assert.Equal(t, "paper", env.backend.uploads[0]["resourceType"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
