// Package domain defines cache types, ports, and key derivation
package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sort"
	"time"
)

// Query types with distinct TTL policies
const (
	QueryLLM   = "llm_response"
	QueryAudit = "website_audit"
)

// Default TTLs per query type
const (
	DefaultLLMTTL   = 24 * time.Hour
	DefaultAuditTTL = 6 * time.Hour
)

// Entry is one cached payload
type Entry struct {
	Key       string
	Payload   []byte
	CreatedAt time.Time
	ExpiresAt time.Time
	HitCount  int64
}

// Stats summarizes cache effectiveness
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
	Entries int64   `json:"entries"`
}

// Key derives the deterministic cache key for a query type and its params:
// sha256 over the query type and the params serialized with sorted keys,
// hex encoded and truncated to 32. Every field is length-prefixed so the
// serialization is injective; pure and order independent
func Key(queryType string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	var lenBuf [binary.MaxVarintLen64]byte
	field := func(s string) {
		n := binary.PutUvarint(lenBuf[:], uint64(len(s)))
		h.Write(lenBuf[:n])
		h.Write([]byte(s))
	}
	field(queryType)
	for _, k := range keys {
		field(k)
		field(params[k])
	}
	return hex.EncodeToString(h.Sum(nil))[:32]
}

// StorageKey prefixes the digest with the query type so invalidation can
// target a whole query class by prefix
func StorageKey(queryType string, params map[string]string) string {
	return queryType + ":" + Key(queryType, params)
}
