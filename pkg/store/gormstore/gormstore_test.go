package gormstore

import (
	"context"
	"testing"

	"bookstore/pkg/database"
	"bookstore/pkg/models"
	"bookstore/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	db, err := database.InitSQLite(":memory:")
	if err != nil {
		panic("failed to connect test database")
	}
	s := New(db)
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, &models.User{ID: "u1", UserName: "Raluki123", Email: "raluca.ioana@example.com", PhoneNumber: "0745678922"}))
	require.NoError(t, s.CreateBook(ctx, &models.Book{ID: "b1", Title: "Dune", Author: "Frank Herbert", Genre: "Science fiction"}))
	return s
}

func TestCreateAssignsID(t *testing.T) {
	s := setupTestStore(t)

	user := &models.User{UserName: "bob", Email: "bob@example.com", PhoneNumber: "123"}
	require.NoError(t, s.CreateUser(context.Background(), user))

	assert.Len(t, user.ID, 36)
}

func TestCreateReviewUniquePair(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first := &models.Review{Title: "Great", Description: "Loved it", Rating: 4.5, UserID: "u1", BookID: "b1"}
	require.NoError(t, s.CreateReview(ctx, first))

	second := &models.Review{Title: "Again", Description: "Still great", Rating: 5, UserID: "u1", BookID: "b1"}
	err := s.CreateReview(ctx, second)

	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestCreateReviewDoesNotWriteRelations(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	review := &models.Review{
		Title: "Great", Description: "Loved it", Rating: 4.5, UserID: "u1", BookID: "b1",
		User: &models.User{ID: "u1", UserName: "changed"},
		Book: &models.Book{ID: "b1", Title: "changed"},
	}
	require.NoError(t, s.CreateReview(ctx, review))

	user, err := s.FindUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Raluki123", user.UserName)

	found, err := s.FindReview(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", found.Book.Title)
}

func TestNotFound(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.FindUser(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.FindReviewByUserAndBook(ctx, "u1", "b1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, s.SaveReview(ctx, &models.Review{ID: "missing"}), store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteReview(ctx, "missing"), store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteBook(ctx, "missing"), store.ErrNotFound)
}

func TestSaveReviewKeepsZeroRating(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	review := &models.Review{Title: "Great", Description: "Loved it", Rating: 4.5, UserID: "u1", BookID: "b1"}
	require.NoError(t, s.CreateReview(ctx, review))

	review.Rating = 0
	require.NoError(t, s.SaveReview(ctx, review))

	found, err := s.FindReview(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(0), found.Rating)
}

func TestPing(t *testing.T) {
	s := setupTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}
