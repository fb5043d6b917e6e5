// Package mongostore implements store.Store on MongoDB. Users, books and
// reviews live in their own collections; reviews reference users and books by
// id and are joined on read.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"bookstore/pkg/models"
	"bookstore/pkg/store"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	UsersCollection   = "users"
	BooksCollection   = "books"
	ReviewsCollection = "reviews"

	reviewUserBookIndex = "idx_review_user_book"
)

type Store struct {
	db      *mongo.Database
	users   *mongo.Collection
	books   *mongo.Collection
	reviews *mongo.Collection
}

var _ store.Store = (*Store)(nil)

func New(db *mongo.Database) *Store {
	return &Store{
		db:      db,
		users:   db.Collection(UsersCollection),
		books:   db.Collection(BooksCollection),
		reviews: db.Collection(ReviewsCollection),
	}
}

// EnsureIndexes creates the unique (user_id, book_id) index that backs the
// one-review-per-user-and-book rule, plus a lookup index on book_id.
// user_id lookups are served by the compound index prefix.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.reviews.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "book_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(reviewUserBookIndex),
		},
		{
			Keys: bson.D{{Key: "book_id", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("mongostore: create review indexes: %w", err)
	}
	return nil
}

func translate(op string, err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("mongostore: %s: %w", op, store.ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("mongostore: %s: %w", op, store.ErrDuplicate)
	default:
		return fmt.Errorf("mongostore: %s: %w", op, err)
	}
}

func notFound(op string) error {
	return fmt.Errorf("mongostore: %s: %w", op, store.ErrNotFound)
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		return translate("create user", err)
	}
	return nil
}

func (s *Store) FindUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, translate("find user", err)
	}
	return &user, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	cursor, err := s.users.Find(ctx, bson.D{})
	if err != nil {
		return nil, translate("list users", err)
	}
	users := make([]models.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, translate("list users", err)
	}
	return users, nil
}

func (s *Store) SaveUser(ctx context.Context, user *models.User) error {
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
		"user_name":    user.UserName,
		"email":        user.Email,
		"phone_number": user.PhoneNumber,
	}})
	if err != nil {
		return translate("save user", err)
	}
	if res.MatchedCount == 0 {
		return notFound("save user")
	}
	return nil
}

// DeleteUser removes the user's reviews before the user. Without a
// transaction a failure in between leaves the user in place with fewer
// reviews, never reviews pointing at a missing user.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if _, err := s.reviews.DeleteMany(ctx, bson.M{"user_id": id}); err != nil {
		return translate("delete user reviews", err)
	}
	res, err := s.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate("delete user", err)
	}
	if res.DeletedCount == 0 {
		return notFound("delete user")
	}
	return nil
}

func (s *Store) CreateBook(ctx context.Context, book *models.Book) error {
	if book.ID == "" {
		book.ID = uuid.NewString()
	}
	if _, err := s.books.InsertOne(ctx, book); err != nil {
		return translate("create book", err)
	}
	return nil
}

func (s *Store) FindBook(ctx context.Context, id string) (*models.Book, error) {
	var book models.Book
	if err := s.books.FindOne(ctx, bson.M{"_id": id}).Decode(&book); err != nil {
		return nil, translate("find book", err)
	}
	return &book, nil
}

func (s *Store) ListBooks(ctx context.Context) ([]models.Book, error) {
	cursor, err := s.books.Find(ctx, bson.D{})
	if err != nil {
		return nil, translate("list books", err)
	}
	books := make([]models.Book, 0)
	if err := cursor.All(ctx, &books); err != nil {
		return nil, translate("list books", err)
	}
	return books, nil
}

func (s *Store) SaveBook(ctx context.Context, book *models.Book) error {
	res, err := s.books.UpdateOne(ctx, bson.M{"_id": book.ID}, bson.M{"$set": bson.M{
		"title":  book.Title,
		"author": book.Author,
		"genre":  book.Genre,
		"price":  book.Price,
	}})
	if err != nil {
		return translate("save book", err)
	}
	if res.MatchedCount == 0 {
		return notFound("save book")
	}
	return nil
}

func (s *Store) DeleteBook(ctx context.Context, id string) error {
	if _, err := s.reviews.DeleteMany(ctx, bson.M{"book_id": id}); err != nil {
		return translate("delete book reviews", err)
	}
	res, err := s.books.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate("delete book", err)
	}
	if res.DeletedCount == 0 {
		return notFound("delete book")
	}
	return nil
}

func (s *Store) CreateReview(ctx context.Context, review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	if _, err := s.reviews.InsertOne(ctx, review); err != nil {
		return translate("create review", err)
	}
	return nil
}

func (s *Store) FindReview(ctx context.Context, id string) (*models.Review, error) {
	return s.findOneReview(ctx, "find review", bson.M{"_id": id})
}

func (s *Store) FindReviewByUserAndBook(ctx context.Context, userID, bookID string) (*models.Review, error) {
	return s.findOneReview(ctx, "find review by user and book", bson.M{"user_id": userID, "book_id": bookID})
}

func (s *Store) ListReviews(ctx context.Context) ([]models.Review, error) {
	return s.findReviews(ctx, "list reviews", bson.D{})
}

func (s *Store) ListReviewsByBook(ctx context.Context, bookID string) ([]models.Review, error) {
	return s.findReviews(ctx, "list reviews by book", bson.M{"book_id": bookID})
}

func (s *Store) ListReviewsByUser(ctx context.Context, userID string) ([]models.Review, error) {
	return s.findReviews(ctx, "list reviews by user", bson.M{"user_id": userID})
}

func (s *Store) SaveReview(ctx context.Context, review *models.Review) error {
	res, err := s.reviews.UpdateOne(ctx, bson.M{"_id": review.ID}, bson.M{"$set": bson.M{
		"title":       review.Title,
		"description": review.Description,
		"rating":      review.Rating,
	}})
	if err != nil {
		return translate("save review", err)
	}
	if res.MatchedCount == 0 {
		return notFound("save review")
	}
	return nil
}

func (s *Store) DeleteReview(ctx context.Context, id string) error {
	res, err := s.reviews.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate("delete review", err)
	}
	if res.DeletedCount == 0 {
		return notFound("delete review")
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

func (s *Store) findOneReview(ctx context.Context, op string, filter any) (*models.Review, error) {
	var review models.Review
	if err := s.reviews.FindOne(ctx, filter).Decode(&review); err != nil {
		return nil, translate(op, err)
	}
	reviews := []models.Review{review}
	if err := s.populate(ctx, reviews); err != nil {
		return nil, translate(op, err)
	}
	return &reviews[0], nil
}

func (s *Store) findReviews(ctx context.Context, op string, filter any) ([]models.Review, error) {
	cursor, err := s.reviews.Find(ctx, filter)
	if err != nil {
		return nil, translate(op, err)
	}
	reviews := make([]models.Review, 0)
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, translate(op, err)
	}
	if err := s.populate(ctx, reviews); err != nil {
		return nil, translate(op, err)
	}
	return reviews, nil
}

// populate resolves User and Book of every review with one $in query per
// collection.
func (s *Store) populate(ctx context.Context, reviews []models.Review) error {
	if len(reviews) == 0 {
		return nil
	}
	userIDs := make([]string, 0, len(reviews))
	bookIDs := make([]string, 0, len(reviews))
	for _, r := range reviews {
		userIDs = append(userIDs, r.UserID)
		bookIDs = append(bookIDs, r.BookID)
	}

	var users []models.User
	if err := findByIDs(ctx, s.users, userIDs, &users); err != nil {
		return err
	}
	var books []models.Book
	if err := findByIDs(ctx, s.books, bookIDs, &books); err != nil {
		return err
	}

	usersByID := make(map[string]*models.User, len(users))
	for i := range users {
		usersByID[users[i].ID] = &users[i]
	}
	booksByID := make(map[string]*models.Book, len(books))
	for i := range books {
		booksByID[books[i].ID] = &books[i]
	}
	for i := range reviews {
		reviews[i].User = usersByID[reviews[i].UserID]
		reviews[i].Book = booksByID[reviews[i].BookID]
	}
	return nil
}

func findByIDs(ctx context.Context, coll *mongo.Collection, ids []string, out any) error {
	cursor, err := coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return err
	}
	return cursor.All(ctx, out)
}
