package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/liliang-cn/doclens/internal/api/middleware"
	"github.com/liliang-cn/doclens/internal/cache"
	"github.com/liliang-cn/doclens/internal/domain"
	"github.com/liliang-cn/doclens/internal/repository"
	"github.com/liliang-cn/doclens/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, failureRate float64) *gin.Engine {
	t.Helper()
	db, err := repository.NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	docs := repository.NewDocumentRepository(db)
	details := repository.NewDetailsRepository(db)
	require.NoError(t, repository.Seed(context.Background(), docs, details))

	logger := zaptest.NewLogger(t)
	svc := service.NewDocumentService(docs, details, cache.NewShardedCache(2, 60), logger, service.Options{
		UploadFailureRate: failureRate,
		MaxUploadSize:     10 * 1024 * 1024,
		AllowedTypes:      []string{"pdf", "docx", "pptx", "xlsx"},
		SectionPageSize:   5,
	})
	return SetupRouter(svc, logger, RouterConfig{AllowOrigins: []string{"*"}, DefaultLimit: 10, MaxLimit: 100})
}

func doRequest(t *testing.T, router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	return doRequest(t, router, httptest.NewRequest(http.MethodGet, path, nil))
}

func uploadRequest(t *testing.T, name string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestRouter(t, 0), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestListDocuments(t *testing.T) {
	router := newTestRouter(t, 0)

	rec := get(t, router, "/api/documents")
	require.Equal(t, http.StatusOK, rec.Code)
	var all domain.DocumentListResponse
	decode(t, rec, &all)
	assert.Len(t, all.Documents, 10)
	assert.Equal(t, 10, all.Limit)
	assert.Equal(t, 1, all.TotalPages)

	rec = get(t, router, "/api/documents?page=2&limit=4")
	require.Equal(t, http.StatusOK, rec.Code)
	var page domain.DocumentListResponse
	decode(t, rec, &page)
	require.Len(t, page.Documents, 4)
	assert.Equal(t, "5", page.Documents[0].ID)
	assert.Equal(t, 3, page.TotalPages)

	rec = get(t, router, "/api/documents?page=9&limit=4")
	require.Equal(t, http.StatusOK, rec.Code)
	var past domain.DocumentListResponse
	decode(t, rec, &past)
	assert.Empty(t, past.Documents)
	assert.Equal(t, 10, past.Total)

	rec = get(t, router, "/api/documents?page=4611686018427387905&limit=4")
	require.Equal(t, http.StatusOK, rec.Code)
	var huge domain.DocumentListResponse
	decode(t, rec, &huge)
	assert.Empty(t, huge.Documents)
	assert.Equal(t, 3, huge.TotalPages)

	assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/documents?limit=oops").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/documents?limit=0").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/documents?limit=101").Code)
	assert.Equal(t, http.StatusOK, get(t, router, "/api/documents?limit=100").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/documents?page=0").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/documents?page=x").Code)
}

func TestGetDocument(t *testing.T) {
	router := newTestRouter(t, 0)

	rec := get(t, router, "/api/documents/4")
	require.Equal(t, http.StatusOK, rec.Code)
	var doc domain.Document
	decode(t, rec, &doc)
	assert.Equal(t, "Carbon Neutrality Roadmap.pptx", doc.Title)
	assert.Equal(t, domain.StatusParsed, doc.Status)

	req := httptest.NewRequest(http.MethodGet, "/api/documents/404", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-1")
	rec = doRequest(t, router, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "req-1", rec.Header().Get(middleware.RequestIDHeader))
	assert.JSONEq(t, `{"error":"document not found","request_id":"req-1"}`, rec.Body.String())
}

func TestGetDocumentDetails(t *testing.T) {
	router := newTestRouter(t, 0)

	rec := get(t, router, "/api/documents/1/details?page=3")
	require.Equal(t, http.StatusOK, rec.Code)
	var res domain.DocumentWithDetails
	decode(t, rec, &res)
	require.NotNil(t, res.Details)
	assert.Equal(t, 3, res.Details.List.Paging.CurrentPage)
	assert.Equal(t, "https://example.com/sustainability-report-2024.pdf", res.Details.List.DocLink)
	assert.Equal(t, 5, res.Details.List.SectionPaging[domain.SectionContent].TotalPages)

	rec = get(t, router, "/api/documents/6/details")
	require.Equal(t, http.StatusOK, rec.Code)
	var raw map[string]json.RawMessage
	decode(t, rec, &raw)
	assert.Equal(t, "null", string(raw["details"]))

	assert.Equal(t, http.StatusNotFound, get(t, router, "/api/documents/nope/details?page=2").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/documents/1/details?page=-1").Code)
}

func TestGetSection(t *testing.T) {
	router := newTestRouter(t, 0)

	rec := get(t, router, "/api/documents/2/sections/headers?page=2&page_size=4")
	require.Equal(t, http.StatusOK, rec.Code)
	var page domain.SectionPage
	decode(t, rec, &page)
	assert.Equal(t, domain.SectionHeaders, page.Section)
	assert.Equal(t, 9, page.TotalItems)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Items, 4)
	assert.Equal(t, 4, page.Start)
	assert.Equal(t, 8, page.End)

	rec = get(t, router, "/api/documents/2/sections/body?page=9")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &page)
	assert.Empty(t, page.Items)
	assert.Equal(t, 5, page.PageSize)

	rec = get(t, router, "/api/documents/2/sections/headers?page=2305843009213693953&page_size=4")
	require.Equal(t, http.StatusOK, rec.Code)
	var huge domain.SectionPage
	decode(t, rec, &huge)
	assert.Empty(t, huge.Items)
	assert.Equal(t, 3, huge.TotalPages)

	assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/documents/2/sections/body?page_size=9223372036854775807").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/documents/2/sections/footer").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/documents/2/sections/body?page_size=0").Code)
	assert.Equal(t, http.StatusNotFound, get(t, router, "/api/documents/nope/sections/body").Code)
}

func TestUploadDocument(t *testing.T) {
	router := newTestRouter(t, 0)

	rec := doRequest(t, router, uploadRequest(t, "X.pdf", bytes.Repeat([]byte("a"), 2*1024*1024)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var doc domain.Document
	decode(t, rec, &doc)
	assert.Equal(t, "X.pdf", doc.Title)
	assert.Equal(t, "pdf", doc.FileType)
	assert.Equal(t, "2.0 MB", doc.FileSize)
	assert.Equal(t, domain.StatusWaitingQueue, doc.Status)

	rec = get(t, router, "/api/documents?limit=1")
	var list domain.DocumentListResponse
	decode(t, rec, &list)
	assert.Equal(t, 11, list.Total)
	assert.Equal(t, doc.ID, list.Documents[0].ID)
}

func TestUploadDocumentRejected(t *testing.T) {
	router := newTestRouter(t, 0)

	rec := doRequest(t, router, uploadRequest(t, "notes.txt", []byte("hi")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/documents", nil)
	assert.Equal(t, http.StatusBadRequest, doRequest(t, router, req).Code)
}

func TestUploadDocumentSimulatedFailure(t *testing.T) {
	router := newTestRouter(t, 1)

	rec := doRequest(t, router, uploadRequest(t, "X.pdf", []byte("%PDF")))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body struct {
		Error     string `json:"error"`
		Retryable bool   `json:"retryable"`
	}
	decode(t, rec, &body)
	assert.True(t, body.Retryable)
	assert.Equal(t, domain.ErrUploadFailed.Error(), body.Error)
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t, 0)

	req := httptest.NewRequest(http.MethodOptions, "/api/documents", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := doRequest(t, router, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestRecoveryKeepsRequestID(t *testing.T) {
	router := newTestRouter(t, 0)
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-panic")
	rec := doRequest(t, router, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error","request_id":"req-panic"}`, rec.Body.String())
}
