// Package dto holds the request and response shapes of the HTTP API and the
// conversions between them and the stored entities.
package dto

import "bookstore/pkg/models"

type UserDTO struct {
	ID          string `json:"id,omitempty"`
	UserName    string `json:"userName" validate:"notblank"`
	Email       string `json:"email" validate:"notblank"`
	PhoneNumber string `json:"phoneNumber" validate:"notblank"`
}

func NewUserDTO(user *models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		UserName:    user.UserName,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
	}
}

// ToUser converts the request into an entity. With withoutID set the id is
// left for the store to assign.
func (d UserDTO) ToUser(withoutID bool) *models.User {
	user := &models.User{
		UserName:    d.UserName,
		Email:       d.Email,
		PhoneNumber: d.PhoneNumber,
	}
	if !withoutID {
		user.ID = d.ID
	}
	return user
}

type BookDTO struct {
	ID     string  `json:"id,omitempty"`
	Title  string  `json:"title" validate:"notblank"`
	Author string  `json:"author" validate:"notblank"`
	Genre  string  `json:"genre" validate:"notblank"`
	Price  float64 `json:"price" validate:"gte=0"`
}

func NewBookDTO(book *models.Book) BookDTO {
	return BookDTO{
		ID:     book.ID,
		Title:  book.Title,
		Author: book.Author,
		Genre:  book.Genre,
		Price:  book.Price,
	}
}

func (d BookDTO) ToBook(withoutID bool) *models.Book {
	book := &models.Book{
		Title:  d.Title,
		Author: d.Author,
		Genre:  d.Genre,
		Price:  d.Price,
	}
	if !withoutID {
		book.ID = d.ID
	}
	return book
}

// ReviewCreationDTO is the body of both add-review and update-review.
// Field order is the order in which violations are reported. Rating is a
// pointer so that a missing rating is told apart from a rating of zero.
type ReviewCreationDTO struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title" validate:"notblank"`
	Description string   `json:"description" validate:"notblank"`
	UserID      string   `json:"userId" validate:"notblank"`
	BookID      string   `json:"bookId" validate:"notblank"`
	Rating      *float64 `json:"rating" validate:"required,gte=0,lte=5"`
}

func (d ReviewCreationDTO) ToReview(withoutID bool) *models.Review {
	review := &models.Review{
		Title:       d.Title,
		Description: d.Description,
		Rating:      d.RatingValue(),
		UserID:      d.UserID,
		BookID:      d.BookID,
	}
	if !withoutID {
		review.ID = d.ID
	}
	return review
}

// ReviewDTO always carries the user and book ids. User and Book hold the
// expanded detail and are only set when requested.
type ReviewDTO struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Rating      float64  `json:"rating"`
	UserID      string   `json:"userId"`
	BookID      string   `json:"bookId"`
	User        *UserDTO `json:"user,omitempty"`
	Book        *BookDTO `json:"book,omitempty"`
}

// RatingValue is the requested rating, or zero when none was sent.
func (d ReviewCreationDTO) RatingValue() float64 {
	if d.Rating == nil {
		return 0
	}
	return *d.Rating
}

func NewReviewDTO(review *models.Review, withUser, withBook bool) ReviewDTO {
	out := ReviewDTO{
		ID:          review.ID,
		Title:       review.Title,
		Description: review.Description,
		Rating:      review.Rating,
		UserID:      review.UserID,
		BookID:      review.BookID,
	}
	if withUser && review.User != nil {
		user := NewUserDTO(review.User)
		out.User = &user
	}
	if withBook && review.Book != nil {
		book := NewBookDTO(review.Book)
		out.Book = &book
	}
	return out
}

func NewReviewDTOs(reviews []models.Review, withUser, withBook bool) []ReviewDTO {
	out := make([]ReviewDTO, 0, len(reviews))
	for i := range reviews {
		out = append(out, NewReviewDTO(&reviews[i], withUser, withBook))
	}
	return out
}
