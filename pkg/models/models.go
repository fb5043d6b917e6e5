package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID          string `gorm:"primaryKey;size:36" bson:"_id"`
	UserName    string `gorm:"size:80;not null" bson:"user_name"`
	Email       string `gorm:"not null" bson:"email"`
	PhoneNumber string `gorm:"size:32;not null" bson:"phone_number"`
}

type Book struct {
	ID     string  `gorm:"primaryKey;size:36" bson:"_id"`
	Title  string  `gorm:"not null" bson:"title"`
	Author string  `gorm:"not null" bson:"author"`
	Genre  string  `gorm:"size:80;not null" bson:"genre"`
	Price  float64 `gorm:"not null;default:0" bson:"price"`
}

// Review belongs to exactly one user and one book. The (UserID, BookID) pair
// is unique; User and Book are filled in on reads and never written through.
type Review struct {
	ID          string  `gorm:"primaryKey;size:36" bson:"_id"`
	Title       string  `gorm:"not null" bson:"title"`
	Description string  `gorm:"not null" bson:"description"`
	Rating      float64 `gorm:"not null" bson:"rating"`
	UserID      string  `gorm:"size:36;not null;uniqueIndex:idx_review_user_book;index" bson:"user_id"`
	BookID      string  `gorm:"size:36;not null;uniqueIndex:idx_review_user_book;index" bson:"book_id"`

	User *User `gorm:"foreignKey:UserID" bson:"-"`
	Book *Book `gorm:"foreignKey:BookID" bson:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
