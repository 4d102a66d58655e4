package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/carlisting-golang/internal/models"
	"github.com/01moynul/carlisting-golang/internal/service"
)

// Signup handles POST /users/signup.
func (h *Handlers) Signup(c *gin.Context) {
	var input models.UserRegister
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Users.Register(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Login handles POST /login/access-token and returns a bearer token.
func (h *Handlers) Login(c *gin.Context) {
	var input models.LoginInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Users.Authenticate(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	token, err := h.Tokens.GenerateToken(user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Token{AccessToken: token, TokenType: "bearer"})
}

// Me handles GET /users/me.
func (h *Handlers) Me(c *gin.Context) {
	actor, ok := h.mustActor(c)
	if !ok {
		return
	}

	user, err := h.Users.GetByID(c.Request.Context(), actor.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /users/:id (superuser only). The user's items
// are removed with them.
func (h *Handlers) DeleteUser(c *gin.Context) {
	actor, ok := h.mustActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.Users.Delete(c.Request.Context(), actor, id); err != nil {
		if errors.Is(err, service.ErrPermissionDenied) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Super users are not allowed to delete themselves"})
			return
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Message{Message: "User deleted successfully"})
}
