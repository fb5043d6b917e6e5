package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookstore/pkg/database"
	"bookstore/pkg/metrics"
	"bookstore/pkg/models"
	"bookstore/pkg/service"
	"bookstore/pkg/store"
	"bookstore/pkg/store/gormstore"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type testServer struct {
	router  *gin.Engine
	store   *gormstore.Store
	handler *Handler
}

func setupTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.InitSQLite(":memory:")
	require.NoError(t, err)
	s := gormstore.New(db)
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	logger := zaptest.NewLogger(t)
	h := NewHandler(
		service.NewReviewService(s, s, s, logger),
		service.NewUserService(s, logger),
		service.NewBookService(s, logger),
		metrics.New(prometheus.NewRegistry()),
		logger,
	)
	h.sleep = func(time.Duration) {}

	return &testServer{router: NewRouter(h, s.Ping, opts), store: s, handler: h}
}

func (ts *testServer) seed(t *testing.T, userID, bookID string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, ts.store.CreateUser(ctx, &models.User{
		ID: userID, UserName: "Raluki123", Email: "raluca.ioana@example.com", PhoneNumber: "0745678922",
	}))
	require.NoError(t, ts.store.CreateBook(ctx, &models.Book{
		ID: bookID, Title: "Dune", Author: "Frank Herbert", Genre: "Science fiction", Price: 12.5,
	}))
}

func (ts *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	switch b := body.(type) {
	case nil:
		reader = &bytes.Buffer{}
	case string:
		reader = bytes.NewBufferString(b)
	default:
		jsonBody, _ := json.Marshal(b)
		reader = bytes.NewBuffer(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func reviewBody(userID, bookID string) map[string]interface{} {
	return map[string]interface{}{
		"title":       "Great",
		"description": "Loved it",
		"rating":      4.5,
		"userId":      userID,
		"bookId":      bookID,
	}
}

func decodeObject(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var response []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestAddReview(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.seed(t, "u1", "b1")

	w := ts.do("POST", "/review/add-review", reviewBody("u1", "b1"))

	assert.Equal(t, http.StatusCreated, w.Code)
	response := decodeObject(t, w)
	assert.NotEmpty(t, response["id"])
	assert.Equal(t, 4.5, response["rating"])
	assert.Equal(t, "u1", response["user"].(map[string]interface{})["id"])
	assert.Equal(t, "b1", response["book"].(map[string]interface{})["id"])

	w = ts.do("POST", "/review/add-review", reviewBody("u1", "b1"))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAddReviewFailures(t *testing.T) {
	tests := []struct {
		name   string
		body   interface{}
		status int
	}{
		{name: "malformed json", body: "{not json", status: http.StatusBadRequest},
		{
			name:   "empty title",
			body:   map[string]interface{}{"description": "Loved it", "rating": 4.5, "userId": "u1", "bookId": "b1"},
			status: http.StatusBadRequest,
		},
		{
			name:   "rating out of range",
			body:   map[string]interface{}{"title": "Great", "description": "Loved it", "rating": 9, "userId": "u1", "bookId": "b1"},
			status: http.StatusBadRequest,
		},
		{
			name:   "missing rating",
			body:   map[string]interface{}{"title": "Great", "description": "Loved it", "userId": "u1", "bookId": "b1"},
			status: http.StatusBadRequest,
		},
		{name: "unknown user", body: reviewBody("nobody", "b1"), status: http.StatusNotFound},
		{name: "unknown book", body: reviewBody("u1", "nothing"), status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := setupTestServer(t, Options{})
			ts.seed(t, "u1", "b1")

			w := ts.do("POST", "/review/add-review", tt.body)

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, decodeObject(t, w), "error")
			reviews, err := ts.store.ListReviews(context.Background())
			require.NoError(t, err)
			assert.Empty(t, reviews)
		})
	}
}

func TestUpdateReview(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.seed(t, "u1", "b1")

	created := decodeObject(t, ts.do("POST", "/review/add-review", reviewBody("u1", "b1")))

	update := reviewBody("u1", "b1")
	update["id"] = created["id"]
	update["rating"] = 2
	w := ts.do("PUT", "/review/update-review", update)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decodeObject(t, w)["rating"])

	update["id"] = "missing"
	w = ts.do("PUT", "/review/update-review", update)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteAndGetReview(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.seed(t, "u1", "b1")

	created := decodeObject(t, ts.do("POST", "/review/add-review", reviewBody("u1", "b1")))
	id := created["id"].(string)

	w := ts.do("GET", "/review/get-review/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Great", decodeObject(t, w)["title"])

	w = ts.do("DELETE", "/review/delete-review/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do("GET", "/review/get-review/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do("DELETE", "/review/delete-review/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetReviewsEmpty(t *testing.T) {
	ts := setupTestServer(t, Options{})

	w := ts.do("GET", "/review/get-reviews", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestGetBookReviews(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.seed(t, "u1", "b1")
	ts.seed(t, "u2", "b2")
	require.Equal(t, http.StatusCreated, ts.do("POST", "/review/add-review", reviewBody("u1", "b1")).Code)
	require.Equal(t, http.StatusCreated, ts.do("POST", "/review/add-review", reviewBody("u2", "b1")).Code)

	w := ts.do("GET", "/review/get-book-reviews/b1", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	reviews := decodeList(t, w)
	require.Len(t, reviews, 2)
	for _, r := range reviews {
		assert.NotContains(t, r, "user")
		assert.NotEmpty(t, r["userId"])
		assert.Equal(t, "b1", r["book"].(map[string]interface{})["id"])
	}

	w = ts.do("GET", "/review/get-book-reviews/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetUserReviews(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.seed(t, "u1", "b1")
	require.Equal(t, http.StatusCreated, ts.do("POST", "/review/add-review", reviewBody("u1", "b1")).Code)

	w := ts.do("GET", "/review/get-user-reviews/u1", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	reviews := decodeList(t, w)
	require.Len(t, reviews, 1)
	assert.NotContains(t, reviews[0], "book")
	assert.Equal(t, "b1", reviews[0]["bookId"])
	assert.Equal(t, "u1", reviews[0]["user"].(map[string]interface{})["id"])

	w = ts.do("GET", "/review/get-user-reviews/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserEndpoints(t *testing.T) {
	ts := setupTestServer(t, Options{})

	w := ts.do("POST", "/user/add-user", map[string]interface{}{
		"userName": "Raluki123", "email": "raluca.ioana@example.com", "phoneNumber": "0745678922",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeObject(t, w)["id"].(string)

	w = ts.do("PUT", "/user/update-user", map[string]interface{}{
		"id": id, "userName": "Updated userName", "email": "Updated email", "phoneNumber": "Updated phoneNumber",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do("GET", "/user/get-user/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Updated userName", decodeObject(t, w)["userName"])

	w = ts.do("GET", "/user/get-users", nil)
	assert.Len(t, decodeList(t, w), 1)

	w = ts.do("DELETE", "/user/delete-user/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do("GET", "/user/get-user/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookEndpoints(t *testing.T) {
	ts := setupTestServer(t, Options{})

	w := ts.do("POST", "/book/add-book", map[string]interface{}{
		"title": "Dune", "author": "Frank Herbert", "genre": "Science fiction", "price": 12.5,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeObject(t, w)["id"].(string)

	w = ts.do("POST", "/book/add-book", map[string]interface{}{
		"id": "b9", "title": "Dune", "author": "Frank Herbert", "genre": "Science fiction",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do("GET", "/book/get-book/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do("GET", "/book/get-books", nil)
	assert.Len(t, decodeList(t, w), 1)

	w = ts.do("DELETE", "/book/delete-book/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestGetReviewBroken(t *testing.T) {
	ts := setupTestServer(t, Options{FaultInjection: true})
	ts.seed(t, "u1", "b1")
	created := decodeObject(t, ts.do("POST", "/review/add-review", reviewBody("u1", "b1")))
	id := created["id"].(string)

	ts.handler.coinFlip = func() int { return 0 }
	w := ts.do("GET", "/review/get-review-broken/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	ts.handler.coinFlip = func() int { return 1 }
	w = ts.do("GET", "/review/get-review-broken/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	metricsBody := ts.do("GET", "/metrics", nil).Body.String()
	assert.Contains(t, metricsBody, `error_on_return_review_broken_count{endpoint="get_review_broken"} 1`)
	assert.Contains(t, metricsBody, `bookstore_endpoint_requests_total{endpoint="review.get.review.broken"} 2`)
}

func TestGetReviewBrokenDisabledByDefault(t *testing.T) {
	ts := setupTestServer(t, Options{})

	w := ts.do("GET", "/review/get-review-broken/r1", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotContains(t, ts.do("GET", "/metrics", nil).Body.String(), "review.get.review.broken")
}

func TestRateLimit(t *testing.T) {
	ts := setupTestServer(t, Options{RateLimitRPS: 0.001, RateLimitBurst: 1})

	assert.Equal(t, http.StatusOK, ts.do("GET", "/review/get-reviews", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, ts.do("GET", "/review/get-reviews", nil).Code)

	assert.Equal(t, http.StatusOK, ts.do("GET", "/manage/health", nil).Code)
}

func TestRateLimitIgnoresForwardingHeaders(t *testing.T) {
	ts := setupTestServer(t, Options{RateLimitRPS: 0.001, RateLimitBurst: 1})

	codes := make([]int, 0, 2)
	for _, forwarded := range []string{"203.0.113.7", "198.51.100.23"} {
		req := httptest.NewRequest("GET", "/review/get-reviews", nil)
		req.Header.Set("X-Forwarded-For", forwarded)
		req.Header.Set("X-Real-IP", forwarded)
		w := httptest.NewRecorder()
		ts.router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestHealth(t *testing.T) {
	ts := setupTestServer(t, Options{})

	assert.Equal(t, http.StatusOK, ts.do("GET", "/manage/live", nil).Code)
	assert.Equal(t, http.StatusOK, ts.do("GET", "/manage/health", nil).Code)

	require.NoError(t, ts.store.Close(context.Background()))
	assert.Equal(t, http.StatusServiceUnavailable, ts.do("GET", "/manage/health", nil).Code)
}

func TestInternalErrorsAreHidden(t *testing.T) {
	ts := setupTestServer(t, Options{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/review/get-reviews", nil)

	ts.handler.respondError(c, errors.New("connection reset by peer"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestUnavailableStore(t *testing.T) {
	ts := setupTestServer(t, Options{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/user/get-users", nil)

	ts.handler.respondError(c, fmt.Errorf("list users: %w", store.ErrUnavailable))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
