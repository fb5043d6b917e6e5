// Package api exposes the bookstore workflows over HTTP.
package api

import (
	"context"
	"math/rand"
	"time"

	"bookstore/pkg/metrics"
	"bookstore/pkg/service"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	reviews *service.ReviewService
	users   *service.UserService
	books   *service.BookService
	metrics *metrics.Metrics
	logger  *zap.Logger

	// coinFlip and sleep drive the fault-injection endpoint.
	coinFlip func() int
	sleep    func(time.Duration)
}

func NewHandler(
	reviews *service.ReviewService,
	users *service.UserService,
	books *service.BookService,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		reviews:  reviews,
		users:    users,
		books:    books,
		metrics:  m,
		logger:   logger.Named("api"),
		coinFlip: func() int { return rand.Intn(2) },
		sleep:    time.Sleep,
	}
}

type Options struct {
	// FaultInjection registers /review/get-review-broken/:reviewId, which fails
	// or stalls at random so alerting on the endpoint metrics can be exercised.
	FaultInjection bool
	// RateLimitRPS of zero turns rate limiting off.
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter assembles the engine: access logging and panic recovery for every
// route, health and metrics outside the rate limit, API routes inside it.
func NewRouter(h *Handler, ping func(ctx context.Context) error, opts Options) *gin.Engine {
	router := gin.New()
	// No proxy is trusted, so ClientIP is the peer address and forwarding
	// headers cannot pick a fresh rate limit bucket. Nil never fails.
	_ = router.SetTrustedProxies(nil)
	router.Use(ginzap.Ginzap(h.logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(h.logger, true))

	RegisterHealth(router, ping)
	router.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	if opts.RateLimitRPS > 0 {
		router.Use(RateLimit(opts.RateLimitRPS, opts.RateLimitBurst))
	}
	h.RegisterRoutes(router, opts)
	return router
}

// RegisterRoutes registers:
//
//	POST   /review/add-review
//	PUT    /review/update-review
//	DELETE /review/delete-review/:reviewId
//	GET    /review/get-review/:reviewId
//	GET    /review/get-reviews
//	GET    /review/get-book-reviews/:bookId
//	GET    /review/get-user-reviews/:userId
//
// and the matching /user and /book routes.
func (h *Handler) RegisterRoutes(router gin.IRouter, opts Options) {
	review := router.Group("/review")
	{
		review.POST("/add-review", h.metrics.Track("review.add.review"), h.addReview)
		review.PUT("/update-review", h.metrics.Track("review.update.review"), h.updateReview)
		review.DELETE("/delete-review/:reviewId", h.metrics.Track("review.delete.review"), h.deleteReview)
		review.GET("/get-review/:reviewId", h.metrics.Track("review.get.review"), h.getReview)
		review.GET("/get-reviews", h.metrics.Track("review.get.reviews"), h.getReviews)
		review.GET("/get-book-reviews/:bookId", h.metrics.Track("review.get.book.reviews"), h.getBookReviews)
		review.GET("/get-user-reviews/:userId", h.metrics.Track("review.get.user.reviews"), h.getUserReviews)
		if opts.FaultInjection {
			review.GET("/get-review-broken/:reviewId", h.metrics.Track("review.get.review.broken"), h.getReviewBroken)
		}
	}

	user := router.Group("/user")
	{
		user.POST("/add-user", h.metrics.Track("user.add.user"), h.addUser)
		user.PUT("/update-user", h.metrics.Track("user.update.user"), h.updateUser)
		user.DELETE("/delete-user/:userId", h.metrics.Track("user.delete.user"), h.deleteUser)
		user.GET("/get-user/:userId", h.metrics.Track("user.get.user"), h.getUser)
		user.GET("/get-users", h.metrics.Track("user.get.users"), h.getUsers)
	}

	book := router.Group("/book")
	{
		book.POST("/add-book", h.metrics.Track("book.add.book"), h.addBook)
		book.PUT("/update-book", h.metrics.Track("book.update.book"), h.updateBook)
		book.DELETE("/delete-book/:bookId", h.metrics.Track("book.delete.book"), h.deleteBook)
		book.GET("/get-book/:bookId", h.metrics.Track("book.get.book"), h.getBook)
		book.GET("/get-books", h.metrics.Track("book.get.books"), h.getBooks)
	}
}
