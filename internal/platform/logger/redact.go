package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode/utf8"
)

type treatment int

const (
	keep treatment = iota
	redact
	hash
	measure
)

const redacted = "[REDACTED]"

// Substrings of a lowercased key that mark its value as a credential or PII.
var redactFragments = []string{
	"token", "authorization", "password", "secret", "cookie",
	"api_key", "apikey", "email", "refresh",
}

// Identifiers are hashed so log lines stay correlatable.
var hashKeys = map[string]bool{
	"user_id":    true,
	"session_id": true,
	"client_ip":  true,
}

// Journal text and generated guidance are user content; only their size is logged.
var contentKeys = map[string]bool{
	"text":       true,
	"journal":    true,
	"guidance":   true,
	"prompt":     true,
	"completion": true,
}

type redactionPolicy struct {
	enabled bool
	salt    string
}

var (
	policyOnce sync.Once
	policy     redactionPolicy
)

// currentPolicy reads LOG_REDACTION_ENABLED and LOG_HASH_SALT once.
func currentPolicy() redactionPolicy {
	policyOnce.Do(func() {
		switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_REDACTION_ENABLED"))) {
		case "0", "false", "no", "off":
			policy.enabled = false
		default:
			policy.enabled = true
		}
		policy.salt = strings.TrimSpace(os.Getenv("LOG_HASH_SALT"))
	})
	return policy
}

func classify(key string) treatment {
	key = strings.ToLower(strings.TrimSpace(key))
	switch {
	case key == "":
		return keep
	case hashKeys[key]:
		return hash
	case contentKeys[key]:
		return measure
	}
	for _, frag := range redactFragments {
		if strings.Contains(key, frag) {
			return redact
		}
	}
	return keep
}

func sanitizeKVs(kv []interface{}) []interface{} {
	p := currentPolicy()
	if len(kv) == 0 || !p.enabled {
		return kv
	}
	out := make([]interface{}, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		key := stringify(kv[i])
		out = append(out, key, p.apply(key, kv[i+1]))
	}
	if len(kv)%2 == 1 {
		out = append(out, kv[len(kv)-1])
	}
	return out
}

func (p redactionPolicy) apply(key string, val interface{}) interface{} {
	switch classify(key) {
	case redact:
		return redacted
	case hash:
		return p.digest(stringify(val))
	case measure:
		return fmt.Sprintf("[%d runes]", utf8.RuneCountInString(stringify(val)))
	}
	switch v := val.(type) {
	case map[string]interface{}:
		if v == nil {
			return v
		}
		out := make(map[string]interface{}, len(v))
		for k, inner := range v {
			out[k] = p.apply(k, inner)
		}
		return out
	case []interface{}:
		if v == nil {
			return v
		}
		out := make([]interface{}, len(v))
		for i, inner := range v {
			out[i] = p.apply("", inner)
		}
		return out
	case string:
		if looksLikeJWT(v) {
			return redacted
		}
	}
	return val
}

func (p redactionPolicy) digest(raw string) string {
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(p.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:6])
}

func looksLikeJWT(s string) bool {
	parts := strings.Split(s, ".")
	return len(parts) == 3 && len(parts[0]) > 10 && len(parts[1]) > 10
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
