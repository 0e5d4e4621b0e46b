package handler

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	reportapp "github.com/gym/backend/internal/application/report"
	"github.com/gym/backend/internal/domain/identity"
	"github.com/gym/backend/internal/domain/report"
	"github.com/gym/backend/internal/infrastructure/printing"
	"github.com/gym/backend/internal/interfaces/http/dto"
	"github.com/gym/backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type reportFixture struct {
	router   *gin.Engine
	tx       *MockTransactionRepository
	mem      *MockMembershipRepository
	products *MockProductRepository
	dir      string
}

func newReportFixture(t *testing.T, renderer printing.PDFRenderer) *reportFixture {
	t.Helper()
	f := &reportFixture{
		tx:       new(MockTransactionRepository),
		mem:      new(MockMembershipRepository),
		products: new(MockProductRepository),
		dir:      t.TempDir(),
	}

	engine, err := printing.NewTemplateEngine()
	require.NoError(t, err)
	store, err := printing.NewOutputStore(&printing.OutputStoreConfig{BasePath: f.dir})
	require.NoError(t, err)

	svc := reportapp.NewReportService(f.tx, f.mem, f.products, engine, renderer,
		reportapp.WithClock(func() time.Time { return testNow }),
	)
	h := NewReportHandler(svc, store)

	f.router = gin.New()
	f.router.Use(middleware.RequestID(nil))
	api := f.router.Group("/api/v1/reports", withClaims(identity.RoleEmployee))
	api.GET("/types", h.ListReportTypes)
	api.GET("/periods", h.ListPeriods)
	api.GET("/products", h.ListProducts)
	api.DELETE("/products/cache", h.InvalidateProducts)
	api.POST("", h.Generate)
	api.GET("/files/:name", h.Download)
	return f
}

func (f *reportFixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestReportHandler_ListReportTypes(t *testing.T) {
	f := newReportFixture(t, &fakeRenderer{})

	w := f.do(http.MethodGet, "/api/v1/reports/types", "")
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeResponse(t, w).Data.([]any)
	require.Len(t, data, 4)
	first := data[0].(map[string]any)
	assert.Equal(t, "financial", first["type"])
	assert.Equal(t, "Raport Finansowy", first["title"])
	assert.Equal(t, true, data[1].(map[string]any)["supports_product_filter"])
}

func TestReportHandler_ListPeriods(t *testing.T) {
	f := newReportFixture(t, &fakeRenderer{})

	w := f.do(http.MethodGet, "/api/v1/reports/periods", "")
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeResponse(t, w).Data.([]any)
	require.Len(t, data, len(report.PeriodPresets()))
	lastMonth := data[1].(map[string]any)
	assert.Equal(t, "last-month", lastMonth["alias"])
	assert.Equal(t, report.PeriodLastMonth, lastMonth["label"])
}

func TestReportHandler_ListProducts(t *testing.T) {
	f := newReportFixture(t, &fakeRenderer{})
	f.products.On("FindNames", mock.Anything).Return([]string{"Białko", "Woda"}, nil).Once()

	w := f.do(http.MethodGet, "/api/v1/reports/products", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"Wszystkie", "Białko", "Woda"}, decodeResponse(t, w).Data)
}

func TestReportHandler_ListProducts_StorageFailure(t *testing.T) {
	f := newReportFixture(t, &fakeRenderer{})
	f.products.On("FindNames", mock.Anything).Return(nil, assert.AnError).Once()

	w := f.do(http.MethodGet, "/api/v1/reports/products", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"Wszystkie"}, decodeResponse(t, w).Data)
}

func TestReportHandler_InvalidateProducts(t *testing.T) {
	f := newReportFixture(t, &fakeRenderer{})
	w := f.do(http.MethodDelete, "/api/v1/reports/products/cache", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReportHandler_GenerateAndDownload(t *testing.T) {
	f := newReportFixture(t, &fakeRenderer{})
	f.tx.On("FindByPeriod", mock.Anything, mock.Anything).Return([]report.TransactionRecord{
		{ID: 1, ClientName: "Jan Kowalski", ProductName: "Woda", Date: testNow.AddDate(0, 0, -3), Amount: decimal.RequireFromString("3.50")},
	}, nil)
	f.mem.On("FindByPeriod", mock.Anything, mock.Anything).Return([]report.MembershipRecord{
		{ID: 1, ClientName: "Anna Nowak", Date: testNow.AddDate(0, 0, -10), Amount: decimal.RequireFromString("120.00")},
	}, nil)

	w := f.do(http.MethodPost, "/api/v1/reports", `{"type":"financial","period":"last-month"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "financial", data["type"])
	assert.Equal(t, "Raport Finansowy", data["title"])
	assert.Empty(t, data["warnings"])
	fileName := data["file_name"].(string)
	assert.True(t, strings.HasPrefix(fileName, "raport_finansowy_2024-01-31_"))
	assert.Equal(t, filesPath+fileName, data["download_path"])
	assert.FileExists(t, filepath.Join(f.dir, fileName))

	w = f.do(http.MethodGet, data["download_path"].(string), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pdfContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), fileName)
	assert.Equal(t, "%PDF-1.4 Raport Finansowy", w.Body.String())
}

func TestReportHandler_Generate_DegradedSection(t *testing.T) {
	f := newReportFixture(t, &fakeRenderer{})
	f.mem.On("FindByPeriod", mock.Anything, mock.Anything).Return(nil, report.NewStorageError(report.EntityMemberships, "query failed", assert.AnError))

	w := f.do(http.MethodPost, "/api/v1/reports", `{"type":"memberships","start_date":"2024-01-01","end_date":"2024-01-15"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := decodeResponse(t, w).Data.(map[string]any)
	warnings := data["warnings"].([]any)
	require.Len(t, warnings, 1)
	assert.Equal(t, report.EntityMemberships, warnings[0].(map[string]any)["entity"])
	assert.Equal(t, "2024-01-01T00:00:00Z", data["period_start"])
	assert.Equal(t, "2024-01-15T00:00:00Z", data["period_end"])
}

func TestReportHandler_Generate_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"unknown type", `{"type":"payroll"}`, dto.ErrCodeValidation},
		{"missing type", `{}`, dto.ErrCodeValidation},
		{"bad date format", `{"type":"financial","start_date":"31.01.2024","end_date":"2024-01-31"}`, dto.ErrCodeValidation},
		{"single custom date", `{"type":"financial","start_date":"2024-01-01"}`, dto.ErrCodeInvalidDateRange},
		{"reversed dates", `{"type":"financial","start_date":"2024-02-01","end_date":"2024-01-01"}`, dto.ErrCodeInvalidDateRange},
		{"filter on financial", `{"type":"financial","product":"Woda"}`, dto.ErrCodeUnsupportedFilter},
		{"malformed json", `{"type":`, dto.ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReportFixture(t, &fakeRenderer{})

			w := f.do(http.MethodPost, "/api/v1/reports", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, tt.wantCode, decodeResponse(t, w).Error.Code)

			entries, err := os.ReadDir(f.dir)
			require.NoError(t, err)
			assert.Empty(t, entries)
			f.tx.AssertNotCalled(t, "FindByPeriod", mock.Anything, mock.Anything)
			f.mem.AssertNotCalled(t, "FindByPeriod", mock.Anything, mock.Anything)
		})
	}
}

func TestReportHandler_Generate_RenderFailure(t *testing.T) {
	f := newReportFixture(t, &fakeRenderer{err: assert.AnError})
	f.tx.On("FindByPeriod", mock.Anything, mock.Anything).Return([]report.TransactionRecord{}, nil)

	w := f.do(http.MethodPost, "/api/v1/reports", `{"type":"transactions"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, dto.ErrCodeReportRender, decodeResponse(t, w).Error.Code)

	entries, err := os.ReadDir(f.dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReportHandler_Download_Errors(t *testing.T) {
	f := newReportFixture(t, &fakeRenderer{})

	w := f.do(http.MethodGet, "/api/v1/reports/files/missing.pdf", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeNotFound, decodeResponse(t, w).Error.Code)

	w = f.do(http.MethodGet, "/api/v1/reports/files/a%5Cb.pdf", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUniqueFileName(t *testing.T) {
	name := uniqueFileName("raport_produktow_Mata/Pas_2024-01-31.pdf")
	assert.True(t, strings.HasPrefix(name, "raport_produktow_Mata_Pas_2024-01-31_"))
	assert.True(t, strings.HasSuffix(name, ".pdf"))
	assert.NotEqual(t, name, uniqueFileName("raport_produktow_Mata/Pas_2024-01-31.pdf"))
}

func TestRequestedPeriod(t *testing.T) {
	token, err := requestedPeriod(GenerateReportRequest{Period: "last-week"})
	require.NoError(t, err)
	assert.Equal(t, "last-week", token)

	token, err = requestedPeriod(GenerateReportRequest{StartDate: "2024-01-01", EndDate: "2024-01-31"})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01:2024-01-31", token)
}
