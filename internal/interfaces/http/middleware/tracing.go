package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing instruments incoming requests with OpenTelemetry spans and
// attaches the request ID and actor ID as span attributes.
func Tracing(serviceName string) gin.HandlerFunc {
	otelMiddleware := otelgin.Middleware(serviceName)

	return func(c *gin.Context) {
		otelMiddleware(c)

		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if requestID := c.GetString("request_id"); requestID != "" {
				span.SetAttributes(attribute.String("request.id", requestID))
			}
			if actorID := c.GetHeader("X-Actor-ID"); actorID != "" {
				span.SetAttributes(attribute.String("actor.id", actorID))
			}
		}
	}
}

// SpanErrorMarker marks the active span as errored on 5xx responses
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		status := c.Writer.Status()
		if status >= 500 {
			span.SetStatus(codes.Error, "server error")
			span.SetAttributes(attribute.Int("http.response.status_code", status))
			for _, ginErr := range c.Errors {
				span.RecordError(ginErr.Err)
			}
		}
	}
}
