package api

import (
	"math/rand"
	"net/http"
	"time"

	"bookstore/pkg/apperrors"
	"bookstore/pkg/dto"

	"github.com/gin-gonic/gin"
)

// addReview handles POST /review/add-review
func (h *Handler) addReview(c *gin.Context) {
	var req dto.ReviewCreationDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	review, err := h.reviews.AddReview(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// updateReview handles PUT /review/update-review
func (h *Handler) updateReview(c *gin.Context) {
	var req dto.ReviewCreationDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	review, err := h.reviews.UpdateReview(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// deleteReview handles DELETE /review/delete-review/:reviewId
func (h *Handler) deleteReview(c *gin.Context) {
	if err := h.reviews.DeleteReviewByID(c.Request.Context(), c.Param("reviewId")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// getReview handles GET /review/get-review/:reviewId
func (h *Handler) getReview(c *gin.Context) {
	review, err := h.reviews.GetReviewByID(c.Request.Context(), c.Param("reviewId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// getReviews handles GET /review/get-reviews
func (h *Handler) getReviews(c *gin.Context) {
	reviews, err := h.reviews.GetReviews(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// getBookReviews handles GET /review/get-book-reviews/:bookId
func (h *Handler) getBookReviews(c *gin.Context) {
	reviews, err := h.reviews.GetBookReviews(c.Request.Context(), c.Param("bookId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// getUserReviews handles GET /review/get-user-reviews/:userId
func (h *Handler) getUserReviews(c *gin.Context) {
	reviews, err := h.reviews.GetUserReviews(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// getReviewBroken handles GET /review/get-review-broken/:reviewId. Half of the
// calls fail with a not-found error; the rest are delayed by up to two seconds.
func (h *Handler) getReviewBroken(c *gin.Context) {
	if h.coinFlip() == 0 {
		h.metrics.InjectedFailure("get_review_broken")
		h.respondError(c, apperrors.EntityNotFound("review"))
		return
	}

	h.sleep(time.Duration(rand.Intn(20)) * 100 * time.Millisecond)
	h.getReview(c)
}
