package logger

import (
	"context"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	RequestIDHeader = "X-Request-Id"
	maxRequestIDLen = 128
)

type ctxKey struct{}

// RequestID returns the id assigned by RequestLogger, or "" outside of it.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// RequestLogger tags every request with an id and logs its completion with
// colored status, duration and size.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			id := r.Header.Get(RequestIDHeader)
			if !validRequestID(id) {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)
			r = r.WithContext(context.WithValue(r.Context(), ctxKey{}, id))

			log.Debug(color.GreenString("→ Incoming")+" "+
				color.CyanString("%-7s", r.Method)+" "+
				color.WhiteString(r.URL.Path),
				zap.String("request_id", id),
				zap.String("remote", r.RemoteAddr))

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			statusColor := color.New(color.FgGreen)
			if status >= 400 && status < 500 {
				statusColor = color.New(color.FgYellow)
			} else if status >= 500 {
				statusColor = color.New(color.FgRed)
			}

			duration := time.Since(start)
			durationColor := color.New(color.FgGreen)
			if duration > 100*time.Millisecond {
				durationColor = color.New(color.FgYellow)
			}
			if duration > 500*time.Millisecond {
				durationColor = color.New(color.FgRed)
			}

			log.Info(color.GreenString("← Completed")+" "+
				color.CyanString("%-7s", r.Method)+" "+
				color.WhiteString(r.URL.Path)+" "+
				statusColor.Sprintf("%3d", status)+" "+
				durationColor.Sprintf("%13v", duration)+" "+
				humanizeBytes(ww.BytesWritten()),
				zap.String("request_id", id),
				zap.Int("status", status),
				zap.Duration("duration", duration))
		})
	}
}

// validRequestID accepts short caller ids made of letters, digits, '-', '_'
// and '.'.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}

func humanizeBytes(b int) string {
	const unit = 1024
	if b < unit {
		return color.BlueString("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return color.BlueString("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
