package user

import (
	"net/http"

	"nexussync/auth"
	"nexussync/internal/errors"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for users
type Handler struct {
	service Service
}

// NewHandler creates a new user handler
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// FormLogin represents login form data
type FormLogin struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// FormRegister represents registration form data
type FormRegister struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"`
}

// Register handles user registration
func (h *Handler) Register(c *gin.Context) {
	var form FormRegister
	if err := c.ShouldBindJSON(&form); err != nil {
		errors.HandleError(c, errors.BadRequest("Invalid input", err))
		return
	}

	user := &User{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
		Role:     form.Role,
		IsActive: true,
	}

	if err := h.service.Register(user); err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user.ToSafeUser()})
}

// Login handles user login
func (h *Handler) Login(c *gin.Context) {
	var form FormLogin
	if err := c.ShouldBindJSON(&form); err != nil {
		errors.HandleError(c, errors.BadRequest("Invalid input", err))
		return
	}

	user, err := h.service.Login(form.Email, form.Password)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	token, err := auth.GenerateJWT(user.ID)
	if err != nil {
		errors.HandleError(c, errors.Internal(err))
		return
	}

	if err := auth.StoreSession(token); err != nil {
		errors.HandleError(c, errors.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"user":         user.ToSafeUser(),
	})
}

// Logout invalidates the current session token
func (h *Handler) Logout(c *gin.Context) {
	token := c.GetString("jwt_token")
	if err := auth.DropSession(token); err != nil {
		errors.HandleError(c, errors.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// GetProfile returns the authenticated user
func (h *Handler) GetProfile(c *gin.Context) {
	userID := c.GetString("user_id")
	user, err := h.service.GetUserByID(userID)
	if err != nil {
		errors.HandleError(c, errors.NotFound("User not found", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.ToSafeUser()})
}

// ListUsers returns the known user directory for presence display
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers()
	if err != nil {
		errors.HandleError(c, errors.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
