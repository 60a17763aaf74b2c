// Package graph wraps the graph database that stores the optional movie catalogue.
package graph

import (
	"context"
	"errors"
	"fmt"
)

// Client is the narrow contract the catalogue needs from the graph database.
type Client interface {
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error)
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error)
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Result holds every record of a query, fully consumed.
type Result struct {
	Records []Record
}

// Record maps the keys of a RETURN clause to their values.
type Record map[string]any

// String returns the value under key as a string, or "" when absent or null.
func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return ""
	}
}

// Int64 returns the value under key as an integer. The driver decodes Cypher integers as int64.
func (r Record) Int64(key string) (int64, bool) {
	switch v := r[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// Float64 returns the value under key as a float, or 0.
func (r Record) Float64(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}

// Options configures the Neo4j client.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// ErrMissingURI indicates the graph URI is not provided.
var ErrMissingURI = errors.New("graph URI is required")
