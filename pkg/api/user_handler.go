package api

import (
	"net/http"

	"bookstore/pkg/dto"

	"github.com/gin-gonic/gin"
)

// addUser handles POST /user/add-user
func (h *Handler) addUser(c *gin.Context) {
	var req dto.UserDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.users.AddUser(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// updateUser handles PUT /user/update-user
func (h *Handler) updateUser(c *gin.Context) {
	var req dto.UserDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.users.UpdateUser(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// deleteUser handles DELETE /user/delete-user/:userId
func (h *Handler) deleteUser(c *gin.Context) {
	if err := h.users.DeleteUserByID(c.Request.Context(), c.Param("userId")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// getUser handles GET /user/get-user/:userId
func (h *Handler) getUser(c *gin.Context) {
	user, err := h.users.GetUserByID(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// getUsers handles GET /user/get-users
func (h *Handler) getUsers(c *gin.Context) {
	users, err := h.users.GetUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}
