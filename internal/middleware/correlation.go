package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type correlationCtxKey struct{}

// correlationHeaders are honoured in order; the first non-empty value wins so
// an id minted by an upstream proxy survives the hop through the gateway.
var correlationHeaders = []string{"X-Correlation-ID", "X-Request-ID"}

// CorrelationID stamps every request with an identifier that follows it
// through the gateway's logs and onward calls to the recruiting backend,
// the judge, and the voice service. A fresh id is minted when the caller
// did not send one.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := ""
		for _, header := range correlationHeaders {
			if id = strings.TrimSpace(c.Get(header)); id != "" {
				break
			}
		}
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals("correlation_id", id)
		c.Set("X-Correlation-ID", id)
		c.SetUserContext(context.WithValue(c.Context(), correlationCtxKey{}, id))

		return c.Next()
	}
}

// CorrelationIDFromContext returns the identifier carried by ctx, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(correlationCtxKey{}).(string); ok {
		return id
	}
	return ""
}

// GetCorrelationID returns the identifier stamped on the active request.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals("correlation_id").(string); ok {
		return id
	}
	return CorrelationIDFromContext(c.Context())
}

// ContextWithCorrelation binds an identifier to ctx for code running outside
// a fiber handler, such as the interview event loop.
func ContextWithCorrelation(ctx context.Context, correlationID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	correlationID = strings.TrimSpace(correlationID)
	if correlationID == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationCtxKey{}, correlationID)
}
