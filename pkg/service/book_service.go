package service

import (
	"context"
	"errors"
	"fmt"

	"bookstore/pkg/dto"
	"bookstore/pkg/store"
	"bookstore/pkg/validation"

	"go.uber.org/zap"
)

type BookService struct {
	books  store.BookStore
	logger *zap.Logger
}

func NewBookService(books store.BookStore, logger *zap.Logger) *BookService {
	return &BookService{books: books, logger: logger.Named("book")}
}

func (s *BookService) AddBook(ctx context.Context, req dto.BookDTO) (dto.BookDTO, error) {
	if err := validation.Book(req, false); err != nil {
		s.logger.Warn("Invalid book creation request", zap.Error(err))
		return dto.BookDTO{}, err
	}

	book := req.ToBook(true)
	if err := s.books.CreateBook(ctx, book); err != nil {
		return dto.BookDTO{}, fmt.Errorf("create book: %w", err)
	}

	s.logger.Info("Book created", zap.String("book_id", book.ID))
	return dto.NewBookDTO(book), nil
}

func (s *BookService) UpdateBook(ctx context.Context, req dto.BookDTO) (dto.BookDTO, error) {
	if err := validation.Book(req, true); err != nil {
		s.logger.Warn("Invalid book update request", zap.String("book_id", req.ID), zap.Error(err))
		return dto.BookDTO{}, err
	}

	book, err := s.books.FindBook(ctx, req.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("Book not found", zap.String("book_id", req.ID))
		}
		return dto.BookDTO{}, resolve(err, "book")
	}

	book.Title = req.Title
	book.Author = req.Author
	book.Genre = req.Genre
	book.Price = req.Price
	if err := s.books.SaveBook(ctx, book); err != nil {
		return dto.BookDTO{}, resolve(err, "book")
	}

	s.logger.Info("Book updated", zap.String("book_id", book.ID))
	return dto.NewBookDTO(book), nil
}

// DeleteBookByID removes the book together with its reviews.
func (s *BookService) DeleteBookByID(ctx context.Context, bookID string) error {
	if _, err := s.books.FindBook(ctx, bookID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("Book not found", zap.String("book_id", bookID))
		}
		return resolve(err, "book")
	}
	if err := s.books.DeleteBook(ctx, bookID); err != nil {
		return resolve(err, "book")
	}

	s.logger.Info("Book deleted", zap.String("book_id", bookID))
	return nil
}

func (s *BookService) GetBookByID(ctx context.Context, bookID string) (dto.BookDTO, error) {
	book, err := s.books.FindBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("Book not found", zap.String("book_id", bookID))
		}
		return dto.BookDTO{}, resolve(err, "book")
	}
	return dto.NewBookDTO(book), nil
}

func (s *BookService) GetBooks(ctx context.Context) ([]dto.BookDTO, error) {
	books, err := s.books.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	out := make([]dto.BookDTO, 0, len(books))
	for i := range books {
		out = append(out, dto.NewBookDTO(&books[i]))
	}
	return out, nil
}
