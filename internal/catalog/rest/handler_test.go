package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	caterrors "github.com/pmerino/gocatalog/internal/catalog/errors"
	"github.com/pmerino/gocatalog/internal/catalog/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCatalogService is a mock implementation of the CatalogService interface.
type mockCatalogService struct {
	product *service.ProductDto
	page    *service.Page
	error   error

	lastQuery *service.ListQuery
}

func (m *mockCatalogService) Create(_ context.Context, _ service.ProductCreateDto) (*service.ProductDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockCatalogService) FindAll(_ context.Context, query service.ListQuery) (*service.Page, error) {
	m.lastQuery = &query
	if m.error != nil {
		return nil, m.error
	}
	return m.page, nil
}

func (m *mockCatalogService) FindOne(_ context.Context, _ string) (*service.ProductDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockCatalogService) Update(_ context.Context, id string, _ service.ProductUpdateDto) (*service.ProductDto, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, caterrors.ErrInvalidProductID
	}
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockCatalogService) DeleteByID(_ context.Context, _ uuid.UUID) error {
	return m.error
}

func (m *mockCatalogService) DeleteAll(_ context.Context) error {
	return m.error
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// toJSON is a helper function to convert a struct to JSON string
func toJSON(t *testing.T, v interface{}) string {
	t.Helper()
	bytes, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal to JSON: %v", err)
	}
	return string(bytes)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func sampleDto(id string) *service.ProductDto {
	return &service.ProductDto{
		ID:     id,
		Title:  "Chill Hoodie",
		Slug:   "chill-hoodie",
		Price:  70,
		Stock:  3,
		Sizes:  []string{"S", "M"},
		Gender: "unisex",
		Tags:   []string{"hoodie"},
		Images: []string{"a.jpg", "b.jpg"},
	}
}

func Test_CatalogAPI_FindOne(t *testing.T) {
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	testCases := []struct {
		name         string
		mockService  mockCatalogService
		term         string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - product found by id",
			mockService:  mockCatalogService{product: sampleDto(mockID.String())},
			term:         mockID.String(),
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, sampleDto(mockID.String())),
		},
		{
			name:         "Success - product found by slug",
			mockService:  mockCatalogService{product: sampleDto(mockID.String())},
			term:         "chill-hoodie",
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, sampleDto(mockID.String())),
		},
		{
			name:         "Error - product not found",
			mockService:  mockCatalogService{error: caterrors.ErrProductNotFound},
			term:         "missing-product",
			expectedCode: http.StatusNotFound,
			expectedBody: toJSON(t, ErrorResponse{Error: `Product with term "missing-product" not found`}),
		},
		{
			name:         "Error - service error",
			mockService:  mockCatalogService{error: errors.New("service unavailable")},
			term:         "chill-hoodie",
			expectedCode: http.StatusInternalServerError,
			expectedBody: toJSON(t, ErrorResponse{Error: `Failed to retrieve product with term "chill-hoodie"`}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&tc.mockService, testLogger())
			req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+tc.term, nil)
			req.SetPathValue("term", tc.term)
			rr := httptest.NewRecorder()

			// when
			api.FindOne(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}

func Test_CatalogAPI_FindAll(t *testing.T) {
	emptyPage := &service.Page{
		Data: []service.ProductDto{}, Total: 0, Limit: 10, Offset: 0,
		TotalPages: 0, CurrentPage: 1,
	}
	testCases := []struct {
		name         string
		mockService  mockCatalogService
		query        string
		expectedCode int
	}{
		{
			name:         "Success - defaults applied when limit and offset absent",
			mockService:  mockCatalogService{page: emptyPage},
			query:        "",
			expectedCode: http.StatusOK,
		},
		{
			name:         "Success - filters accepted",
			mockService:  mockCatalogService{page: emptyPage},
			query:        "?limit=5&offset=10&search=hoodie&gender=women&size=M",
			expectedCode: http.StatusOK,
		},
		{
			name:         "Error - zero limit rejected",
			mockService:  mockCatalogService{page: emptyPage},
			query:        "?limit=0",
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - negative offset rejected",
			mockService:  mockCatalogService{page: emptyPage},
			query:        "?offset=-1",
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - unknown gender rejected",
			mockService:  mockCatalogService{page: emptyPage},
			query:        "?gender=robots",
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - service error",
			mockService:  mockCatalogService{error: errors.New("boom")},
			query:        "",
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&tc.mockService, testLogger())
			req := httptest.NewRequest(http.MethodGet, "/api/v1/products"+tc.query, nil)
			rr := httptest.NewRecorder()

			// when
			api.FindAll(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
		})
	}
}

func Test_CatalogAPI_FindAll_Defaults(t *testing.T) {
	// given
	mockService := mockCatalogService{page: &service.Page{Data: []service.ProductDto{}, Limit: 10, CurrentPage: 1}}
	api := NewHandler(&mockService, testLogger())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rr := httptest.NewRecorder()

	// when
	api.FindAll(rr, req)

	// then
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, mockService.lastQuery)
	assert.Equal(t, int32(10), mockService.lastQuery.Limit)
	assert.Equal(t, int32(0), mockService.lastQuery.Offset)
}

func Test_CatalogAPI_Create(t *testing.T) {
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	validBody := `{"title":"Chill Hoodie","price":70,"stock":3,"gender":"unisex","sizes":["S","M"],"images":["a.jpg","b.jpg"]}`
	testCases := []struct {
		name         string
		mockService  mockCatalogService
		body         string
		expectedCode int
	}{
		{
			name:         "Success - product created",
			mockService:  mockCatalogService{product: sampleDto(mockID.String())},
			body:         validBody,
			expectedCode: http.StatusCreated,
		},
		{
			name:         "Error - invalid JSON",
			mockService:  mockCatalogService{},
			body:         `{not json`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - missing title",
			mockService:  mockCatalogService{},
			body:         `{"price":70,"gender":"unisex"}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - negative price",
			mockService:  mockCatalogService{},
			body:         `{"title":"T","price":-1,"gender":"unisex"}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - unknown gender",
			mockService:  mockCatalogService{},
			body:         `{"title":"T","price":1,"gender":"robots"}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - duplicate title",
			mockService:  mockCatalogService{error: caterrors.ErrDuplicateProduct},
			body:         validBody,
			expectedCode: http.StatusConflict,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&tc.mockService, testLogger())
			req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()

			// when
			api.Create(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
		})
	}
}

func Test_CatalogAPI_Update(t *testing.T) {
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	testCases := []struct {
		name         string
		mockService  mockCatalogService
		id           string
		body         string
		expectedCode int
	}{
		{
			name:         "Success - title patched",
			mockService:  mockCatalogService{product: sampleDto(mockID.String())},
			id:           mockID.String(),
			body:         `{"title":"Updated Hoodie"}`,
			expectedCode: http.StatusOK,
		},
		{
			name:         "Success - images replaced",
			mockService:  mockCatalogService{product: sampleDto(mockID.String())},
			id:           mockID.String(),
			body:         `{"images":["c.jpg","d.jpg"]}`,
			expectedCode: http.StatusOK,
		},
		{
			name:         "Error - malformed id",
			mockService:  mockCatalogService{},
			id:           "not-a-uuid",
			body:         `{"title":"Updated Hoodie"}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - product not found",
			mockService:  mockCatalogService{error: caterrors.ErrProductNotFound},
			id:           mockID.String(),
			body:         `{"title":"Updated Hoodie"}`,
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "Error - duplicate title",
			mockService:  mockCatalogService{error: caterrors.ErrDuplicateProduct},
			id:           mockID.String(),
			body:         `{"title":"Taken Title"}`,
			expectedCode: http.StatusConflict,
		},
		{
			name:         "Error - service error",
			mockService:  mockCatalogService{error: errors.New("boom")},
			id:           mockID.String(),
			body:         `{"title":"Updated Hoodie"}`,
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&tc.mockService, testLogger())
			req := httptest.NewRequest(http.MethodPatch, "/api/v1/products/"+tc.id, strings.NewReader(tc.body))
			req.SetPathValue("id", tc.id)
			rr := httptest.NewRecorder()

			// when
			api.Update(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
		})
	}
}

func Test_CatalogAPI_DeleteByID(t *testing.T) {
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	testCases := []struct {
		name         string
		mockService  mockCatalogService
		id           string
		expectedCode int
	}{
		{
			name:         "Success - product deleted",
			mockService:  mockCatalogService{},
			id:           mockID.String(),
			expectedCode: http.StatusNoContent,
		},
		{
			name:         "Error - invalid id",
			mockService:  mockCatalogService{},
			id:           "123-invalid-id",
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - product not found",
			mockService:  mockCatalogService{error: caterrors.ErrProductNotFound},
			id:           mockID.String(),
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&tc.mockService, testLogger())
			req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+tc.id, nil)
			req.SetPathValue("id", tc.id)
			rr := httptest.NewRecorder()

			// when
			api.DeleteByID(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
		})
	}
}

func Test_SeedAPI_Run(t *testing.T) {
	testCases := []struct {
		name         string
		seedErr      error
		expectedCode int
	}{
		{
			name:         "Success - seed executed",
			expectedCode: http.StatusOK,
		},
		{
			name:         "Error - seed failed",
			seedErr:      errors.New("boom"),
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewSeedHandler(seedRunnerFunc(func(context.Context) error { return tc.seedErr }), testLogger())
			req := httptest.NewRequest(http.MethodPost, "/api/v1/seed", nil)
			rr := httptest.NewRecorder()

			// when
			api.Run(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
		})
	}
}

// seedRunnerFunc adapts a function to the SeedRunner interface.
type seedRunnerFunc func(ctx context.Context) error

func (f seedRunnerFunc) Run(ctx context.Context) error { return f(ctx) }
