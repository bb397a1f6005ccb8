package middleware

import (
	"strings"

	"github.com/intervu-ai/intervu-server/internal/domain"
	"github.com/intervu-ai/intervu-server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const InterviewerContextKey = "interviewer"

type AuthMiddleware struct {
	authService domain.AuthService
}

func NewAuthMiddleware(authService domain.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "missing authorization header")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return response.Unauthorized(c, "invalid authorization header format")
		}

		email, err := m.authService.ValidateToken(c.UserContext(), parts[1])
		if err != nil {
			return response.Unauthorized(c, "invalid or expired token")
		}

		c.Locals(InterviewerContextKey, email)
		return c.Next()
	}
}

// GetInterviewerFromContext returns the authenticated interviewer email, or
// an empty string on unauthenticated requests.
func GetInterviewerFromContext(c *fiber.Ctx) string {
	email, ok := c.Locals(InterviewerContextKey).(string)
	if !ok {
		return ""
	}
	return email
}
