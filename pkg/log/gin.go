package log

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const headerRequestID = "X-Request-ID"

// GinOption tunes GinMiddleware.
type GinOption func(*ginOptions)

type ginOptions struct {
	skip map[string]struct{}
}

// WithSkipPaths suppresses the completion line for the given route
// templates, e.g. "/health". The request still gets a request id.
func WithSkipPaths(paths ...string) GinOption {
	return func(o *ginOptions) {
		for _, p := range paths {
			o.skip[p] = struct{}{}
		}
	}
}

// GinMiddleware tags every request with a request id (taken from
// X-Request-ID or freshly generated), stores a child logger in the request
// context and writes one completion line per request. The line's level
// follows the response status: 5xx error, 4xx warn, anything else info.
func GinMiddleware(logger zerolog.Logger, opts ...GinOption) gin.HandlerFunc {
	o := ginOptions{skip: map[string]struct{}{}}
	for _, opt := range opts {
		opt(&o)
	}

	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(headerRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(headerRequestID, reqID)

		child := logger.With().
			Str(FieldRequestID, reqID).
			Str(FieldMethod, c.Request.Method).
			Str(FieldPath, c.Request.URL.Path).
			Logger()
		c.Request = c.Request.WithContext(WithLogger(c.Request.Context(), child))

		c.Next()

		route := c.FullPath()
		if _, ok := o.skip[route]; ok {
			return
		}

		status := c.Writer.Status()
		evt := eventForStatus(child, status).
			Str(FieldRoute, route).
			Str(FieldClientIP, c.ClientIP()).
			Int(FieldStatus, status).
			Int(FieldBytes, c.Writer.Size()).
			Int64(FieldLatency, time.Since(start).Milliseconds())

		// The auth middleware stores the actor on the gin context.
		if id, ok := c.Get(FieldUserID); ok {
			if uid, ok := id.(uint); ok {
				evt = evt.Uint(FieldUserID, uid)
			}
		}
		if name := c.GetString(FieldUsername); name != "" {
			evt = evt.Str(FieldUsername, name)
		}
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			evt = evt.Strs("errors", errs.Errors())
		}

		evt.Msg("request completed")
	}
}

func eventForStatus(l zerolog.Logger, status int) *zerolog.Event {
	switch {
	case status >= http.StatusInternalServerError:
		return l.Error()
	case status >= http.StatusBadRequest:
		return l.Warn()
	default:
		return l.Info()
	}
}
