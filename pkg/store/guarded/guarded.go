// Package guarded wraps a store.Store with a circuit breaker so that requests
// fail fast with store.ErrUnavailable while the database keeps erroring.
package guarded

import (
	"context"
	"errors"
	"fmt"

	"bookstore/pkg/circuitbreaker"
	"bookstore/pkg/models"
	"bookstore/pkg/store"

	"go.uber.org/zap"
)

type Store struct {
	next    store.Store
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.Logger
}

func New(next store.Store, breaker *circuitbreaker.CircuitBreaker, logger *zap.Logger) *Store {
	return &Store{next: next, breaker: breaker, logger: logger.Named("store")}
}

// databaseFault reports whether err says something about the database rather
// than about the data asked for.
func databaseFault(err error) bool {
	return !errors.Is(err, store.ErrNotFound) &&
		!errors.Is(err, store.ErrDuplicate) &&
		!errors.Is(err, context.Canceled)
}

func (s *Store) call(op string, fn func() error) error {
	err := s.breaker.Execute(fn, databaseFault)
	if errors.Is(err, circuitbreaker.ErrOpen) {
		s.logger.Warn("Rejected store call", zap.String("op", op), zap.Stringer("breaker", s.breaker.GetState()))
		return fmt.Errorf("%s: %w", op, store.ErrUnavailable)
	}
	return err
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return s.call("create user", func() error { return s.next.CreateUser(ctx, user) })
}

func (s *Store) FindUser(ctx context.Context, id string) (user *models.User, err error) {
	err = s.call("find user", func() error {
		user, err = s.next.FindUser(ctx, id)
		return err
	})
	return user, err
}

func (s *Store) ListUsers(ctx context.Context) (users []models.User, err error) {
	err = s.call("list users", func() error {
		users, err = s.next.ListUsers(ctx)
		return err
	})
	return users, err
}

func (s *Store) SaveUser(ctx context.Context, user *models.User) error {
	return s.call("save user", func() error { return s.next.SaveUser(ctx, user) })
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.call("delete user", func() error { return s.next.DeleteUser(ctx, id) })
}

func (s *Store) CreateBook(ctx context.Context, book *models.Book) error {
	return s.call("create book", func() error { return s.next.CreateBook(ctx, book) })
}

func (s *Store) FindBook(ctx context.Context, id string) (book *models.Book, err error) {
	err = s.call("find book", func() error {
		book, err = s.next.FindBook(ctx, id)
		return err
	})
	return book, err
}

func (s *Store) ListBooks(ctx context.Context) (books []models.Book, err error) {
	err = s.call("list books", func() error {
		books, err = s.next.ListBooks(ctx)
		return err
	})
	return books, err
}

func (s *Store) SaveBook(ctx context.Context, book *models.Book) error {
	return s.call("save book", func() error { return s.next.SaveBook(ctx, book) })
}

func (s *Store) DeleteBook(ctx context.Context, id string) error {
	return s.call("delete book", func() error { return s.next.DeleteBook(ctx, id) })
}

func (s *Store) CreateReview(ctx context.Context, review *models.Review) error {
	return s.call("create review", func() error { return s.next.CreateReview(ctx, review) })
}

func (s *Store) FindReview(ctx context.Context, id string) (review *models.Review, err error) {
	err = s.call("find review", func() error {
		review, err = s.next.FindReview(ctx, id)
		return err
	})
	return review, err
}

func (s *Store) FindReviewByUserAndBook(ctx context.Context, userID, bookID string) (review *models.Review, err error) {
	err = s.call("find review by user and book", func() error {
		review, err = s.next.FindReviewByUserAndBook(ctx, userID, bookID)
		return err
	})
	return review, err
}

func (s *Store) ListReviews(ctx context.Context) (reviews []models.Review, err error) {
	err = s.call("list reviews", func() error {
		reviews, err = s.next.ListReviews(ctx)
		return err
	})
	return reviews, err
}

func (s *Store) ListReviewsByBook(ctx context.Context, bookID string) (reviews []models.Review, err error) {
	err = s.call("list reviews by book", func() error {
		reviews, err = s.next.ListReviewsByBook(ctx, bookID)
		return err
	})
	return reviews, err
}

func (s *Store) ListReviewsByUser(ctx context.Context, userID string) (reviews []models.Review, err error) {
	err = s.call("list reviews by user", func() error {
		reviews, err = s.next.ListReviewsByUser(ctx, userID)
		return err
	})
	return reviews, err
}

func (s *Store) SaveReview(ctx context.Context, review *models.Review) error {
	return s.call("save review", func() error { return s.next.SaveReview(ctx, review) })
}

func (s *Store) DeleteReview(ctx context.Context, id string) error {
	return s.call("delete review", func() error { return s.next.DeleteReview(ctx, id) })
}

// Ping bypasses the breaker so readiness always reflects the database itself.
func (s *Store) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	return s.next.Close(ctx)
}
