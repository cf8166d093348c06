package proxy

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// UpstreamResponse is the upstream reply with its body already drained.
type UpstreamResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

type Kind int

const (
	KindJSON Kind = iota + 1
	KindRaw
)

func (k Kind) String() string {
	switch k {
	case KindJSON:
		return "json"
	case KindRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// Result is what an upstream body turned out to be. JSON is set only for
// KindJSON and Raw only for KindRaw.
type Result struct {
	Kind Kind
	JSON json.RawMessage
	Raw  string
}

type Proxy struct {
	Logger    *zap.Logger
	client    *http.Client
	userAgent string
	blocked   *Blocklist
	handler   http.Handler
}
