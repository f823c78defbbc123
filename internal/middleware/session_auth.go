package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/loandesk/loandesk/internal/auth"
	"github.com/loandesk/loandesk/internal/identity"
)

// SessionAuth resolves the bearer token against the session store and exposes the
// caller's phone number in c.Locals. The "Bearer " prefix is optional.
func SessionAuth(svc *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		sess, err := svc.Authenticate(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, auth.ErrUnauthorized) {
				return fiber.NewError(http.StatusUnauthorized, "Unauthorized")
			}
			return err
		}
		c.Locals(identity.PhoneLocalsKey, sess.Phone)
		c.Locals(sessionTokenKey, sess.Token)
		return c.Next()
	}
}

const sessionTokenKey = "session_token"

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) >= len("Bearer ") && strings.EqualFold(header[:len("Bearer ")], "Bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	return header
}
