// Package localcache models the agent's on-device copy of platform catalog data.
package localcache

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/autocare/platform/internal/domain/shared"
)

// DefaultTTL is how long a cached row is served before it is refetched
const DefaultTTL = 24 * time.Hour

// Kind names one cache table
type Kind string

const (
	KindParts          Kind = "parts"
	KindServices       Kind = "services"
	KindServiceCenters Kind = "service-centers"
	KindCategories     Kind = "categories"
)

// AllKinds lists every cache table in a stable order
var AllKinds = []Kind{KindParts, KindServices, KindServiceCenters, KindCategories}

// ParseKind validates a kind from a URL segment
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllKinds {
		if k == known {
			return k, nil
		}
	}
	return "", shared.NewDomainError("INVALID_CACHE_KIND", fmt.Sprintf("Unknown cache kind: %q", s))
}

// Table returns the SQLite table backing the kind
func (k Kind) Table() string {
	switch k {
	case KindParts:
		return "parts_cache"
	case KindServices:
		return "services_cache"
	case KindServiceCenters:
		return "service_centers_cache"
	case KindCategories:
		return "categories_cache"
	}
	return ""
}

// RemotePath is the platform API path listing the kind
func (k Kind) RemotePath() string {
	switch k {
	case KindParts:
		return "/api/v1/catalog/products"
	case KindServices:
		return "/api/v1/services"
	case KindServiceCenters:
		return "/api/v1/service-centers"
	case KindCategories:
		return "/api/v1/catalog/categories"
	}
	return ""
}

// Entry is one cached row. RemoteID is the platform id; a store with the
// same RemoteID replaces the row.
type Entry struct {
	RemoteID string          `gorm:"column:remote_id;type:varchar(64);primaryKey" json:"id"`
	Code     string          `gorm:"type:varchar(100);index" json:"code,omitempty"`
	Name     string          `gorm:"type:varchar(200);index" json:"name"`
	Category string          `gorm:"type:varchar(100)" json:"category,omitempty"`
	Payload  json.RawMessage `gorm:"type:text;serializer:json" json:"payload"`
	CachedAt time.Time       `gorm:"not null;index" json:"cached_at"`
}

// IsFresh reports whether the row is younger than ttl at now
func (e *Entry) IsFresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.CachedAt) < ttl
}

// codeFields lists the payload fields used as the searchable code, per kind
var codeFields = map[Kind][]string{
	KindParts:          {"sku", "code"},
	KindServices:       {"code"},
	KindServiceCenters: {"code"},
	KindCategories:     {"code"},
}

var categoryFields = map[Kind][]string{
	KindParts:          {"category_id", "category"},
	KindServices:       {"category"},
	KindServiceCenters: {"city"},
	KindCategories:     {},
}

// EntryFromJSON extracts the searchable columns of a platform API object
func EntryFromJSON(kind Kind, raw json.RawMessage) (Entry, error) {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Entry{}, fmt.Errorf("decode %s row: %w", kind, err)
	}
	id := stringField(obj, "id")
	if id == "" {
		return Entry{}, shared.NewDomainError("INVALID_CACHE_ROW", fmt.Sprintf("%s row without id", kind))
	}
	return Entry{
		RemoteID: id,
		Code:     firstField(obj, codeFields[kind]),
		Name:     stringField(obj, "name"),
		Category: firstField(obj, categoryFields[kind]),
		Payload:  raw,
	}, nil
}

func firstField(obj map[string]any, keys []string) string {
	for _, k := range keys {
		if v := stringField(obj, k); v != "" {
			return v
		}
	}
	return ""
}

func stringField(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%v", v)
	}
	return ""
}

// TableStats describes one cache table
type TableStats struct {
	Kind   Kind       `json:"kind"`
	Count  int64      `json:"count"`
	Fresh  int64      `json:"fresh"`
	Oldest *time.Time `json:"oldest,omitempty"`
}
