package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/to-do-list-api/internal/dto"
	apierrors "github.com/yukikurage/to-do-list-api/internal/errors"
	"github.com/yukikurage/to-do-list-api/internal/middleware"
	"github.com/yukikurage/to-do-list-api/internal/services"
)

// AuthHandler serves the token endpoints.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// ObtainToken exchanges a username and password for an access and refresh token.
func (h *AuthHandler) ObtainToken(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBind(&req); err != nil {
		apierrors.BadRequest(c, "username and password are required")
		return
	}

	pair, err := h.authService.ObtainTokenPair(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

// RefreshToken issues a new access token from a refresh token.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.TokenRefreshRequest
	if err := c.ShouldBind(&req); err != nil {
		apierrors.BadRequest(c, "refresh is required")
		return
	}

	access, err := h.authService.RefreshAccessToken(c.Request.Context(), req.Refresh)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AccessTokenResponse{Access: access})
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c, err.Error())
	case errors.Is(err, services.ErrInvalidToken):
		apierrors.InvalidToken(c, err.Error())
	default:
		log.Printf("[%s] %s %s: %v", middleware.GetRequestID(c), c.Request.Method, c.Request.URL.Path, err)
		apierrors.InternalError(c, "")
	}
}
