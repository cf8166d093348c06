package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/mohamedbeat/jsonrelay/logger"
)

const (
	acceptHeader = "application/json, text/plain"

	errMissingURL     = "Missing 'url' query parameter"
	errRequestFailed  = "Proxy request failed"
	blockedMsgPattern = "Access to %s has been restricted by the administrator"
	nonJSONMsgPattern = "%s did not return JSON"
)

func (p *Proxy) handleProxy(w http.ResponseWriter, r *http.Request) {
	log := p.Logger.With(zap.String("request_id", logger.RequestID(r.Context())))

	target := r.URL.Query().Get("url")
	if target == "" {
		log.Warn("Rejected request without url")
		writeJSON(log, w, http.StatusBadRequest, map[string]string{"error": errMissingURL})
		return
	}

	host := upstreamName(target)
	if p.blocked.Blocked(host) {
		log.Warn("Blocked host accessed",
			zap.String("host", host),
			zap.String("client", r.RemoteAddr))
		writeJSON(log, w, http.StatusForbidden, map[string]string{
			"error": fmt.Sprintf(blockedMsgPattern, host),
		})
		return
	}

	resp, err := p.fetch(r.Context(), target)
	var blocked *blockedError
	if errors.As(err, &blocked) {
		log.Warn("Blocked host reached through redirect",
			zap.String("url", target),
			zap.String("host", blocked.host),
			zap.String("client", r.RemoteAddr))
		writeJSON(log, w, http.StatusForbidden, map[string]string{
			"error": fmt.Sprintf(blockedMsgPattern, blocked.host),
		})
		return
	}
	if err != nil {
		log.Error("Proxy request failed", zap.String("url", target), zap.Error(err))
		writeJSON(log, w, http.StatusInternalServerError, map[string]string{
			"error":   errRequestFailed,
			"details": err.Error(),
		})
		return
	}

	result := ParseResult(resp.Body)
	log.Info("Upstream response",
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.String("content_type", resp.Header.Get("Content-Type")),
		zap.Stringer("kind", result.Kind),
		zap.Int("bytes", len(resp.Body)))

	switch result.Kind {
	case KindJSON:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(result.JSON); err != nil {
			log.Debug("Error writing response", zap.Error(err))
		}
	default:
		writeJSON(log, w, http.StatusInternalServerError, map[string]string{
			"error": fmt.Sprintf(nonJSONMsgPattern, host),
			"raw":   result.Raw,
		})
	}
}

// fetch performs the single outbound GET and drains the body once.
func (p *Proxy) fetch(ctx context.Context, target string) (*UpstreamResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", acceptHeader)
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading upstream body: %w", err)
	}

	return &UpstreamResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// upstreamName is the host used in blocklist checks and error messages.
func upstreamName(target string) string {
	u, err := url.Parse(target)
	if err != nil || u.Hostname() == "" {
		return "upstream"
	}
	return u.Hostname()
}

func writeJSON(log *zap.Logger, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		log.Debug("Error writing response", zap.Error(err))
	}
}
