// Package store defines the data-access contract the workflows depend on.
//
// Find* methods return ErrNotFound when nothing matches. Create* methods assign
// the identifier. CreateReview returns ErrDuplicate when the (user, book) pair
// already has a review, which the backends enforce with a unique index.
// Every filter is an equality match on a single field or field pair.
package store

import (
	"context"
	"errors"

	"bookstore/pkg/models"
)

var (
	ErrNotFound    = errors.New("store: entity not found")
	ErrDuplicate   = errors.New("store: duplicate entity")
	// ErrUnavailable is returned without touching the database while it is
	// considered down.
	ErrUnavailable = errors.New("store: unavailable")
)

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	// DeleteUser removes the user and every review written by it.
	DeleteUser(ctx context.Context, id string) error
}

type BookStore interface {
	CreateBook(ctx context.Context, book *models.Book) error
	FindBook(ctx context.Context, id string) (*models.Book, error)
	ListBooks(ctx context.Context) ([]models.Book, error)
	SaveBook(ctx context.Context, book *models.Book) error
	// DeleteBook removes the book and every review written about it.
	DeleteBook(ctx context.Context, id string) error
}

// ReviewStore returns reviews with User and Book resolved.
type ReviewStore interface {
	CreateReview(ctx context.Context, review *models.Review) error
	FindReview(ctx context.Context, id string) (*models.Review, error)
	// FindReviewByUserAndBook matches user_id = userID AND book_id = bookID.
	FindReviewByUserAndBook(ctx context.Context, userID, bookID string) (*models.Review, error)
	ListReviews(ctx context.Context) ([]models.Review, error)
	// ListReviewsByBook matches book_id = bookID.
	ListReviewsByBook(ctx context.Context, bookID string) ([]models.Review, error)
	// ListReviewsByUser matches user_id = userID.
	ListReviewsByUser(ctx context.Context, userID string) ([]models.Review, error)
	// SaveReview writes title, description and rating of an existing review.
	SaveReview(ctx context.Context, review *models.Review) error
	DeleteReview(ctx context.Context, id string) error
}

type Store interface {
	UserStore
	BookStore
	ReviewStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
