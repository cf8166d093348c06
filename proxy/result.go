package proxy

import "encoding/json"

// ParseResult classifies a body that has been read exactly once.
func ParseResult(body []byte) Result {
	if json.Valid(body) {
		return Result{Kind: KindJSON, JSON: json.RawMessage(body)}
	}
	return Result{Kind: KindRaw, Raw: string(body)}
}
