package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Tracing wraps otelgin and enriches the request span with the request ID
// and authenticated company/actor once the auth middleware has run.
func Tracing(serviceName string) gin.HandlerFunc {
	base := otelgin.Middleware(serviceName)

	return func(c *gin.Context) {
		base(c)

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		if requestID := c.GetString(RequestIDKey); requestID != "" {
			span.SetAttributes(attribute.String("http.request_id", requestID))
		}
		if companyID, ok := GetCompanyID(c); ok {
			span.SetAttributes(attribute.String("company.id", companyID.String()))
		}
		if actorID, ok := GetActorID(c); ok {
			span.SetAttributes(attribute.String("user.id", actorID.String()))
		}
	}
}
