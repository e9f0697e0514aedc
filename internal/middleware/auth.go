package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medagenda/clinic-api/internal/handler"
	"github.com/medagenda/clinic-api/internal/service/auth"
	"github.com/medagenda/clinic-api/internal/service/clinic"
)

// Context keys set by the auth middleware
const (
	ContextUserID    = "userID"
	ContextUserEmail = "userEmail"
	ContextClinicID  = "clinicID"

	HeaderClinicID = "X-Clinic-ID"
)

type AuthMiddleware struct {
	authService   auth.AuthServicer
	clinicService clinic.ClinicServicer
}

func NewAuthMiddleware(authService auth.AuthServicer, clinicService clinic.ClinicServicer) *AuthMiddleware {
	return &AuthMiddleware{
		authService:   authService,
		clinicService: clinicService,
	}
}

// Authenticate verifies the bearer token and sets the user identity in the
// request context. Operations downstream read the session from context
// values, never from ambient state.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization format"))
			c.Abort()
			return
		}

		claims, err := m.authService.ValidateToken(c.Request.Context(), parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token"))
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Next()
	}
}

// ClinicScope resolves the acting clinic from the X-Clinic-ID header and
// rejects callers who are not members of it. Every clinical route runs
// behind this check.
func (m *AuthMiddleware) ClinicScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
			c.Abort()
			return
		}

		raw := c.GetHeader(HeaderClinicID)
		if raw == "" {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("clinic ID header is required"))
			c.Abort()
			return
		}

		clinicID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid clinic ID"))
			c.Abort()
			return
		}

		member, err := m.clinicService.IsMember(c.Request.Context(), clinicID, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to check clinic membership"))
			c.Abort()
			return
		}
		if !member {
			c.JSON(http.StatusForbidden, handler.NewErrorResponse("not a member of this clinic"))
			c.Abort()
			return
		}

		c.Set(ContextClinicID, clinicID)
		c.Next()
	}
}

// UserID returns the authenticated user's id from the request context.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// ClinicID returns the acting clinic's id from the request context.
func ClinicID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(ContextClinicID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
