package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hhyyy9/logistics-platform"
	"github.com/hhyyy9/logistics-platform/internal/domain"
)

var tracer = otel.Tracer("session")

type SessionSource interface {
	Session() domain.Session
}

type SessionMiddleware struct {
	source SessionSource
}

func NewSessionMiddleware(source SessionSource) *SessionMiddleware {
	return &SessionMiddleware{source: source}
}

// RequireSigner rejects writes while no wallet signer is attached.
func (m *SessionMiddleware) RequireSigner(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Session.Middleware.RequireSigner")
		defer span.End()

		s := m.source.Session()
		if !s.Connected() || !s.HasSigner() {
			span.RecordError(domain.ErrNotConnected)
			return c.JSON(http.StatusUnauthorized, echo.Map{
				"error": domain.ErrNotConnected.Error(),
				"kind":  "not_connected",
			})
		}

		span.SetAttributes(attribute.String("Account", logistics.ShortAddress(s.Account)))
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
