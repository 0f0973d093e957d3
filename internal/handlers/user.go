package handlers

import (
	"fmt"
	"net/http"

	apperrors "user-profile-api/internal/errors"
	"user-profile-api/internal/models"
	"user-profile-api/internal/services"
	"user-profile-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UserResponse wraps a persisted user with its addresses.
type UserResponse struct {
	Success bool         `json:"success" example:"true"`
	User    *models.User `json:"user"`
}

// MessageResponse acknowledges a delete.
type MessageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"User deleted successfully"`
}

// ErrorResponse is returned for every failure; details is only set on 500s.
type ErrorResponse struct {
	Error   string `json:"error" example:"User not found"`
	Details string `json:"details,omitempty"`
}

// CreateOrUpdateUser godoc
// @Summary Create or update a user profile
// @Description Upserts the user keyed by supabaseUid. Grouped objects demographicData, lifestyleData and medicalData are merged over the flat fields. A supplied addresses array replaces the stored set.
// @Tags Users
// @Accept json
// @Produce json
// @Param user body object true "Profile payload with email and supabaseUid"
// @Success 200 {object} UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users [post]
func (h *UserHandler) CreateOrUpdateUser(c *gin.Context) {
	logger.GlobalLogger.Println("Received request to save user data")
	body, err := bindBody(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.userService.CreateOrUpdateUser(c.Request.Context(), body)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, UserResponse{Success: true, User: user})
}

// GetUser godoc
// @Summary Get a user profile
// @Description Looks a user up by uid, or by email when uid is absent
// @Tags Users
// @Produce json
// @Param uid query string false "Identity-provider uid"
// @Param email query string false "Email"
// @Success 200 {object} UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUser(c.Request.Context(), c.Query("uid"), c.Query("email"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, UserResponse{Success: true, User: user})
}

// UpdateUser godoc
// @Summary Update part of a user profile
// @Description Finds the user by supabaseUid or email and writes only the supplied fields. Identifiers are never changed.
// @Tags Users
// @Accept json
// @Produce json
// @Param user body object true "Identifier plus the fields to change"
// @Success 200 {object} UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	body, err := bindBody(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), body)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, UserResponse{Success: true, User: user})
}

// DeleteUser godoc
// @Summary Delete a user profile
// @Description Deletes the user and all of its addresses
// @Tags Users
// @Produce json
// @Param uid query string false "Identity-provider uid"
// @Param email query string false "Email"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.DeleteUser(c.Request.Context(), c.Query("uid"), c.Query("email")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: apperrors.MsgUserDeleted})
}

// bindBody decodes the request into a generic object so the profile mappers
// can see which keys were supplied.
func bindBody(c *gin.Context) (map[string]interface{}, error) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidBody, err)
	}
	if body == nil {
		body = map[string]interface{}{}
	}
	return body, nil
}
