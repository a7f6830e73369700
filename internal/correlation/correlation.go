// Package correlation generates and propagates per-request trace
// identifiers. Ids are a tracing aid, not a secret: they only need to be
// unique and human-loggable, so a timestamp plus a short uuid suffix is
// sufficient.
package correlation

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Header is the trace header read from inbound requests and set on
// outbound/forwarded requests and on the final response.
const Header = "x-request-id"

// Generate produces a fresh correlation id.
func Generate() string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + "-" + suffix
}

// FromRequest returns the inbound trace id if an upstream caller supplied
// one, else a fresh id. Every request is guaranteed some id.
func FromRequest(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(Header)); id != "" {
		return id
	}
	return Generate()
}

// Headers merges the given correlation id into an outbound header set for
// downstream calls. A nil existing map is allocated; the input map is not
// mutated.
func Headers(existing http.Header, id string) http.Header {
	merged := make(http.Header, len(existing)+1)
	for k, vs := range existing {
		merged[k] = append([]string(nil), vs...)
	}
	merged.Set(Header, id)
	return merged
}

// ctxKey is an unexported context key type to avoid collisions.
type ctxKey struct{}

// NewContext returns a child context carrying the correlation id.
func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the correlation id stored in ctx, or "" when absent.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}
