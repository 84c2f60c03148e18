package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	RequestIDKey     = "request_id"
	ClientKey        = "client"
	ClientVersionKey = "client_version"

	RequestIDHeader     = "X-Request-ID"
	APIKeyHeader        = "X-API-Key"
	ClientVersionHeader = "X-Version"
)

// Authenticator resolves an api key to an active client.
type Authenticator interface {
	Authenticate(ctx context.Context, apiKey string) (*domain.Client, error)
}

// RequestID reuses the caller's request id or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(RequestIDKey, rid)
		c.Header(RequestIDHeader, rid)
		c.Next()
	}
}

// RequestLogger emits one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"request_id", c.GetString(RequestIDKey),
		}
		switch {
		case status >= 500:
			slog.Error("http_request", attrs...)
		case status >= 400:
			slog.Warn("http_request", attrs...)
		default:
			slog.Info("http_request", attrs...)
		}
	}
}

// Recovery turns a panic into a 500 in the api error format.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		slog.Error("panic while serving request", "path", c.Request.URL.Path, "panic", recovered)
		AbortWithError(c, domain.Internal("internal server error"))
	})
}

// APIKeyAuth authenticates the X-API-Key header and stores the client and
// its declared version on the context.
func APIKeyAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, err := auth.Authenticate(c.Request.Context(), c.GetHeader(APIKeyHeader))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		version := c.GetHeader(ClientVersionHeader)
		if version == "" {
			version = domain.DefaultClientVersion
		}
		c.Set(ClientKey, client)
		c.Set(ClientVersionKey, version)
		c.Next()
	}
}

// Client returns the authenticated client, nil on unauthenticated routes.
func Client(c *gin.Context) *domain.Client {
	if v, ok := c.Get(ClientKey); ok {
		if client, ok := v.(*domain.Client); ok {
			return client
		}
	}
	return nil
}

func ClientVersion(c *gin.Context) string {
	if v := c.GetString(ClientVersionKey); v != "" {
		return v
	}
	return domain.DefaultClientVersion
}

// HTTPStatus maps the error taxonomy onto HTTP status codes.
func HTTPStatus(err error) int {
	st, ok := status.FromError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch st.Code() {
	case codes.NotFound:
		return http.StatusNotFound
	case codes.FailedPrecondition, codes.InvalidArgument:
		return http.StatusUnprocessableEntity
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// AbortWithError writes {"error_code", "message"} and stops the chain.
func AbortWithError(c *gin.Context, err error) {
	code := HTTPStatus(err)
	message := err.Error()
	if st, ok := status.FromError(err); ok {
		message = st.Message()
	}
	if code == http.StatusInternalServerError {
		slog.Error("request failed", "path", c.Request.URL.Path, "request_id", c.GetString(RequestIDKey), "error", err)
	}
	c.AbortWithStatusJSON(code, gin.H{"error_code": code, "message": message})
}
