// Package httpx renders errors and wires the cross-cutting gin handlers.
package httpx

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/auth"
	"github.com/fekuna/omnipos-warehouse/internal/i18n"
	"github.com/fekuna/omnipos-warehouse/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var routeMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

func Status(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUpstream:
		return http.StatusBadGateway
	case apperr.KindConfirmation:
		return http.StatusPreconditionRequired
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindUnavailable:
		return http.StatusServiceUnavailable
	case apperr.KindBusy:
		return http.StatusConflict
	case apperr.KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

type Responder struct {
	tr     *i18n.Translator
	logger logger.ZapLogger
}

func NewResponder(tr *i18n.Translator, log logger.ZapLogger) *Responder {
	return &Responder{tr: tr, logger: log}
}

// Error writes {"error": msg} in the caller's language. Unclassified errors
// are logged and hidden behind a generic message.
func (r *Responder) Error(c *gin.Context, err error) {
	e, ok := apperr.As(err)
	if !ok {
		r.logger.Error("unhandled error",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		e = apperr.Wrap(apperr.KindInternal, "InternalError", "internal server error", err)
	}

	msg := r.tr.Localize(e.MessageID, e.Message, e.Data, c.GetHeader("Accept-Language"))
	c.AbortWithStatusJSON(Status(e.Kind), gin.H{"error": msg})
}

// BindJSON decodes the body into dest and reports a validation error on
// malformed input.
func (r *Responder) BindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		r.Error(c, apperr.Wrap(apperr.KindValidation, "InvalidBody", "invalid request body", err))
		return false
	}
	return true
}

// Route registers handlers for path and answers every other method with 405
// and an Allow header.
func (r *Responder) Route(g gin.IRoutes, path string, handlers map[string]gin.HandlerFunc) {
	allowed := make([]string, 0, len(handlers))
	for method, h := range handlers {
		g.Handle(method, path, h)
		allowed = append(allowed, method)
	}
	sort.Strings(allowed)

	notAllowed := r.MethodNotAllowed(allowed...)
	for _, method := range routeMethods {
		if _, ok := handlers[method]; !ok {
			g.Handle(method, path, notAllowed)
		}
	}
}

func (r *Responder) MethodNotAllowed(allowed ...string) gin.HandlerFunc {
	allow := strings.Join(allowed, ", ")
	return func(c *gin.Context) {
		c.Header("Allow", allow)
		method := c.Request.Method
		r.Error(c, apperr.New(apperr.KindMethodNotAllowed, "MethodNotAllowed", "Method "+method+" not allowed").
			WithData(map[string]interface{}{"Method": method}))
	}
}

// RequestLogger logs one line per request after it completes.
func RequestLogger(log logger.ZapLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if id := auth.GetSessionID(c.Request.Context()); id != "" {
			fields = append(fields, zap.String("session_id", id))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}
