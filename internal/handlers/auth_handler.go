package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/submisoon/assessment-service/internal/models"
	"github.com/submisoon/assessment-service/internal/services"
	"github.com/submisoon/assessment-service/internal/utils"
	"github.com/submisoon/assessment-service/internal/validator"
)

type AuthHandler struct {
	BaseHandler
	authService services.AuthService
	validator   *validator.Validator
}

func NewAuthHandler(authService services.AuthService, validator *validator.Validator, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
		validator:   validator,
	}
}

// Login exchanges credentials for an access token
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.LoginRequest true "Login credentials"
// @Success 200 {object} SuccessResponse{data=models.LoginResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorBody{
				Code:    services.CodeValidationFailed,
				Message: "invalid request payload",
			},
		})
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, result, nil, "Login successful")
}
