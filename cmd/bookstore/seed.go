package main

import (
	"context"
	"errors"
	"fmt"

	"bookstore/pkg/models"
	"bookstore/pkg/store"

	"go.uber.org/zap"
)

const (
	testUserID = "83575e12-7ce0-48ee-9931-51919ff3c9ee"
	testBookID = "f7cdc58f-2caf-4b15-9727-f89dcc629b27"
)

// seedTestData makes sure a known user and book exist so a fresh deployment
// can accept reviews straight away. Existing records are left alone.
func seedTestData(ctx context.Context, st store.Store, log *zap.Logger) error {
	_, err := st.FindUser(ctx, testUserID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		user := models.User{
			ID:          testUserID,
			UserName:    "Raluki123",
			Email:       "raluca.ioana@example.com",
			PhoneNumber: "0745678922",
		}
		if err := st.CreateUser(ctx, &user); err != nil {
			return fmt.Errorf("create test user: %w", err)
		}
		log.Info("Created test user", zap.String("user_id", user.ID))
	case err != nil:
		return err
	}

	_, err = st.FindBook(ctx, testBookID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		book := models.Book{
			ID:     testBookID,
			Title:  "The Master and Margarita",
			Author: "Mikhail Bulgakov",
			Genre:  "Novel",
			Price:  39.99,
		}
		if err := st.CreateBook(ctx, &book); err != nil {
			return fmt.Errorf("create test book: %w", err)
		}
		log.Info("Created test book", zap.String("book_id", book.ID))
	case err != nil:
		return err
	}
	return nil
}
