package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gym/backend/internal/domain/identity"
	"github.com/gym/backend/internal/domain/report"
	"github.com/gym/backend/internal/infrastructure/auth"
	"github.com/gym/backend/internal/infrastructure/printing"
	"github.com/gym/backend/internal/interfaces/http/dto"
	"github.com/gym/backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

var testNow = time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC)

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// withClaims stands in for the JWT middleware
func withClaims(role identity.Role) gin.HandlerFunc {
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ID: "jti-test"},
		UserID:           7,
		Email:            "recepcja@gym.local",
		Role:             role,
	}
	return func(c *gin.Context) {
		c.Set(middleware.JWTClaimsKey, claims)
		c.Set(middleware.JWTUserIDKey, claims.UserID)
		c.Set(middleware.JWTEmailKey, claims.Email)
		c.Set(middleware.JWTRoleKey, claims.Role)
		c.Next()
	}
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindByPeriod(ctx context.Context, filter report.RangeFilter) ([]report.TransactionRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.TransactionRecord), args.Error(1)
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id int64) (*report.TransactionRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.TransactionRecord), args.Error(1)
}

func (m *MockTransactionRepository) Create(ctx context.Context, clientID, productID int64, date time.Time, amount decimal.Decimal) (int64, error) {
	args := m.Called(ctx, clientID, productID, date, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockMembershipRepository struct {
	mock.Mock
}

func (m *MockMembershipRepository) FindByPeriod(ctx context.Context, filter report.RangeFilter) ([]report.MembershipRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.MembershipRecord), args.Error(1)
}

func (m *MockMembershipRepository) FindByID(ctx context.Context, id int64) (*report.MembershipRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.MembershipRecord), args.Error(1)
}

func (m *MockMembershipRepository) Create(ctx context.Context, clientID int64, date time.Time, amount decimal.Decimal) (int64, error) {
	args := m.Called(ctx, clientID, date, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMembershipRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindAll(ctx context.Context) ([]report.ProductRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.ProductRecord), args.Error(1)
}

func (m *MockProductRepository) FindNames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id int64) (*report.ProductRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.ProductRecord), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *report.ProductRecord) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *report.ProductRecord) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// fakeRenderer returns a tiny fake PDF without a browser
type fakeRenderer struct {
	err error
}

func (r *fakeRenderer) Render(_ context.Context, req *printing.RenderRequest) (*printing.RenderResult, error) {
	if r.err != nil {
		return nil, r.err
	}
	return &printing.RenderResult{PDFData: []byte("%PDF-1.4 " + req.Title), PageCount: 1}, nil
}

func (r *fakeRenderer) Close() error { return nil }
