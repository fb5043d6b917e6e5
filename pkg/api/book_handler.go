package api

import (
	"net/http"

	"bookstore/pkg/dto"

	"github.com/gin-gonic/gin"
)

func (h *Handler) addBook(c *gin.Context) {
	var req dto.BookDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	book, err := h.books.AddBook(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, book)
}

func (h *Handler) updateBook(c *gin.Context) {
	var req dto.BookDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	book, err := h.books.UpdateBook(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *Handler) deleteBook(c *gin.Context) {
	if err := h.books.DeleteBookByID(c.Request.Context(), c.Param("bookId")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) getBook(c *gin.Context) {
	book, err := h.books.GetBookByID(c.Request.Context(), c.Param("bookId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *Handler) getBooks(c *gin.Context) {
	books, err := h.books.GetBooks(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}
