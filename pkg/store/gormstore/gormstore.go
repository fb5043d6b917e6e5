// Package gormstore implements store.Store on a relational database through gorm.
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"bookstore/pkg/models"
	"bookstore/pkg/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// New wraps an open, migrated connection. The connection must be opened with
// TranslateError enabled so unique violations surface as gorm.ErrDuplicatedKey.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func translate(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("gormstore: %s: %w", op, store.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("gormstore: %s: %w", op, store.ErrDuplicate)
	default:
		return fmt.Errorf("gormstore: %s: %w", op, err)
	}
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return translate("create user", err)
	}
	return nil
}

func (s *Store) FindUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate("find user", err)
	}
	return &user, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := s.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, translate("list users", err)
	}
	return users, nil
}

func (s *Store) SaveUser(ctx context.Context, user *models.User) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]any{
		"user_name":    user.UserName,
		"email":        user.Email,
		"phone_number": user.PhoneNumber,
	})
	if res.Error != nil {
		return translate("save user", res.Error)
	}
	if res.RowsAffected == 0 {
		return translate("save user", gorm.ErrRecordNotFound)
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return translate("delete user", err)
	}
	return nil
}

func (s *Store) CreateBook(ctx context.Context, book *models.Book) error {
	if err := s.db.WithContext(ctx).Create(book).Error; err != nil {
		return translate("create book", err)
	}
	return nil
}

func (s *Store) FindBook(ctx context.Context, id string) (*models.Book, error) {
	var book models.Book
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&book).Error; err != nil {
		return nil, translate("find book", err)
	}
	return &book, nil
}

func (s *Store) ListBooks(ctx context.Context) ([]models.Book, error) {
	books := make([]models.Book, 0)
	if err := s.db.WithContext(ctx).Find(&books).Error; err != nil {
		return nil, translate("list books", err)
	}
	return books, nil
}

func (s *Store) SaveBook(ctx context.Context, book *models.Book) error {
	res := s.db.WithContext(ctx).Model(&models.Book{}).Where("id = ?", book.ID).Updates(map[string]any{
		"title":  book.Title,
		"author": book.Author,
		"genre":  book.Genre,
		"price":  book.Price,
	})
	if res.Error != nil {
		return translate("save book", res.Error)
	}
	if res.RowsAffected == 0 {
		return translate("save book", gorm.ErrRecordNotFound)
	}
	return nil
}

func (s *Store) DeleteBook(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Book{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return translate("delete book", err)
	}
	return nil
}

func (s *Store) reviews(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Preload("User").Preload("Book")
}

// CreateReview inserts the review row only; User and Book are never upserted.
func (s *Store) CreateReview(ctx context.Context, review *models.Review) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(review).Error; err != nil {
		return translate("create review", err)
	}
	return nil
}

func (s *Store) FindReview(ctx context.Context, id string) (*models.Review, error) {
	var review models.Review
	if err := s.reviews(ctx).Where("id = ?", id).First(&review).Error; err != nil {
		return nil, translate("find review", err)
	}
	return &review, nil
}

func (s *Store) FindReviewByUserAndBook(ctx context.Context, userID, bookID string) (*models.Review, error) {
	var review models.Review
	err := s.reviews(ctx).Where("user_id = ? AND book_id = ?", userID, bookID).First(&review).Error
	if err != nil {
		return nil, translate("find review by user and book", err)
	}
	return &review, nil
}

func (s *Store) ListReviews(ctx context.Context) ([]models.Review, error) {
	reviews := make([]models.Review, 0)
	if err := s.reviews(ctx).Find(&reviews).Error; err != nil {
		return nil, translate("list reviews", err)
	}
	return reviews, nil
}

func (s *Store) ListReviewsByBook(ctx context.Context, bookID string) ([]models.Review, error) {
	reviews := make([]models.Review, 0)
	if err := s.reviews(ctx).Where("book_id = ?", bookID).Find(&reviews).Error; err != nil {
		return nil, translate("list reviews by book", err)
	}
	return reviews, nil
}

func (s *Store) ListReviewsByUser(ctx context.Context, userID string) ([]models.Review, error) {
	reviews := make([]models.Review, 0)
	if err := s.reviews(ctx).Where("user_id = ?", userID).Find(&reviews).Error; err != nil {
		return nil, translate("list reviews by user", err)
	}
	return reviews, nil
}

func (s *Store) SaveReview(ctx context.Context, review *models.Review) error {
	res := s.db.WithContext(ctx).Model(&models.Review{}).Where("id = ?", review.ID).Updates(map[string]any{
		"title":       review.Title,
		"description": review.Description,
		"rating":      review.Rating,
	})
	if res.Error != nil {
		return translate("save review", res.Error)
	}
	if res.RowsAffected == 0 {
		return translate("save review", gorm.ErrRecordNotFound)
	}
	return nil
}

func (s *Store) DeleteReview(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Review{})
	if res.Error != nil {
		return translate("delete review", res.Error)
	}
	if res.RowsAffected == 0 {
		return translate("delete review", gorm.ErrRecordNotFound)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("gormstore: get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("gormstore: get database instance: %w", err)
	}
	return sqlDB.Close()
}
