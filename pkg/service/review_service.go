package service

import (
	"context"
	"errors"
	"fmt"

	"bookstore/pkg/apperrors"
	"bookstore/pkg/dto"
	"bookstore/pkg/store"
	"bookstore/pkg/validation"

	"go.uber.org/zap"
)

type ReviewService struct {
	reviews store.ReviewStore
	users   store.UserStore
	books   store.BookStore
	logger  *zap.Logger
}

func NewReviewService(reviews store.ReviewStore, users store.UserStore, books store.BookStore, logger *zap.Logger) *ReviewService {
	return &ReviewService{
		reviews: reviews,
		users:   users,
		books:   books,
		logger:  logger.Named("review"),
	}
}

// AddReview creates a review after checking that the user and the book exist
// and that the user has not reviewed the book yet. A concurrent add for the
// same pair that slips past the lookup is rejected by the store's unique index.
func (s *ReviewService) AddReview(ctx context.Context, req dto.ReviewCreationDTO) (dto.ReviewDTO, error) {
	if err := validation.ReviewCreation(req, false); err != nil {
		s.logger.Warn("Invalid review creation request", zap.Error(err))
		return dto.ReviewDTO{}, err
	}

	review := req.ToReview(true)

	user, err := s.users.FindUser(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("User not found", zap.String("user_id", req.UserID))
		}
		return dto.ReviewDTO{}, resolve(err, "user")
	}
	book, err := s.books.FindBook(ctx, req.BookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("Book not found",
				zap.String("book_id", req.BookID), zap.String("requested_by", req.UserID))
		}
		return dto.ReviewDTO{}, resolve(err, "book")
	}

	_, err = s.reviews.FindReviewByUserAndBook(ctx, user.ID, book.ID)
	switch {
	case err == nil:
		s.logger.Warn("Review already exists",
			zap.String("book_id", book.ID), zap.String("user_id", user.ID))
		return dto.ReviewDTO{}, apperrors.DuplicateObject("review")
	case !errors.Is(err, store.ErrNotFound):
		return dto.ReviewDTO{}, fmt.Errorf("look up existing review: %w", err)
	}

	review.User = user
	review.Book = book
	if err := s.reviews.CreateReview(ctx, review); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			s.logger.Warn("Review already exists",
				zap.String("book_id", book.ID), zap.String("user_id", user.ID))
			return dto.ReviewDTO{}, apperrors.DuplicateObject("review")
		}
		return dto.ReviewDTO{}, fmt.Errorf("create review: %w", err)
	}

	s.logger.Info("Review created",
		zap.String("review_id", review.ID), zap.String("book_id", book.ID), zap.String("user_id", user.ID))
	return dto.NewReviewDTO(review, true, true), nil
}

// UpdateReview overwrites title, description and rating. The user and book
// of a review never change.
func (s *ReviewService) UpdateReview(ctx context.Context, req dto.ReviewCreationDTO) (dto.ReviewDTO, error) {
	if err := validation.ReviewCreation(req, true); err != nil {
		s.logger.Warn("Invalid review update request", zap.String("review_id", req.ID), zap.Error(err))
		return dto.ReviewDTO{}, err
	}

	review, err := s.reviews.FindReview(ctx, req.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("Review not found",
				zap.String("review_id", req.ID), zap.String("requested_by", req.UserID))
		}
		return dto.ReviewDTO{}, resolve(err, "review")
	}

	review.Title = req.Title
	review.Description = req.Description
	review.Rating = req.RatingValue()
	if err := s.reviews.SaveReview(ctx, review); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return dto.ReviewDTO{}, apperrors.EntityNotFound("review")
		}
		return dto.ReviewDTO{}, fmt.Errorf("save review: %w", err)
	}

	s.logger.Info("Review updated",
		zap.String("review_id", review.ID), zap.String("book_id", review.BookID), zap.String("user_id", review.UserID))
	return dto.NewReviewDTO(review, true, true), nil
}

func (s *ReviewService) DeleteReviewByID(ctx context.Context, reviewID string) error {
	if _, err := s.reviews.FindReview(ctx, reviewID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("Review not found", zap.String("review_id", reviewID))
		}
		return resolve(err, "review")
	}
	if err := s.reviews.DeleteReview(ctx, reviewID); err != nil {
		return resolve(err, "review")
	}

	s.logger.Info("Review deleted", zap.String("review_id", reviewID))
	return nil
}

func (s *ReviewService) GetReviewByID(ctx context.Context, reviewID string) (dto.ReviewDTO, error) {
	review, err := s.reviews.FindReview(ctx, reviewID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("Review not found", zap.String("review_id", reviewID))
		}
		return dto.ReviewDTO{}, resolve(err, "review")
	}

	s.logger.Info("Review retrieved", zap.String("review_id", reviewID))
	return dto.NewReviewDTO(review, true, true), nil
}

func (s *ReviewService) GetReviews(ctx context.Context) ([]dto.ReviewDTO, error) {
	reviews, err := s.reviews.ListReviews(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return dto.NewReviewDTOs(reviews, true, true), nil
}

// GetBookReviews lists the reviews of a book with the book expanded and the
// user given by id only.
func (s *ReviewService) GetBookReviews(ctx context.Context, bookID string) ([]dto.ReviewDTO, error) {
	book, err := s.books.FindBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("Book not found", zap.String("book_id", bookID))
		}
		return nil, resolve(err, "book")
	}

	reviews, err := s.reviews.ListReviewsByBook(ctx, book.ID)
	if err != nil {
		return nil, fmt.Errorf("list reviews by book: %w", err)
	}
	return dto.NewReviewDTOs(reviews, false, true), nil
}

// GetUserReviews lists the reviews written by a user with the user expanded
// and the book given by id only.
func (s *ReviewService) GetUserReviews(ctx context.Context, userID string) ([]dto.ReviewDTO, error) {
	user, err := s.users.FindUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("User not found", zap.String("user_id", userID))
		}
		return nil, resolve(err, "user")
	}

	reviews, err := s.reviews.ListReviewsByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list reviews by user: %w", err)
	}
	return dto.NewReviewDTOs(reviews, true, false), nil
}
