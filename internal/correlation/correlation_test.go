package correlation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate_Unique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := Generate()
		assert.NotEmpty(t, id)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestFromRequest_InboundHeaderWins(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(Header, "upstream-id-1")
	assert.Equal(t, "upstream-id-1", FromRequest(r))
}

func TestFromRequest_GeneratesWhenAbsent(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.NotEmpty(t, FromRequest(r))

	// Whitespace-only headers count as absent.
	r.Header.Set(Header, "   ")
	assert.NotEqual(t, "   ", FromRequest(r))
}

func TestHeaders_MergesWithoutMutating(t *testing.T) {
	t.Parallel()

	existing := http.Header{"Accept": []string{"application/json"}}
	merged := Headers(existing, "id-1")

	assert.Equal(t, "id-1", merged.Get(Header))
	assert.Equal(t, "application/json", merged.Get("Accept"))
	assert.Empty(t, existing.Get(Header), "input header set must not be mutated")

	// Nil input is fine.
	merged = Headers(nil, "id-2")
	assert.Equal(t, "id-2", merged.Get(Header))
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := NewContext(context.Background(), "id-1")
	assert.Equal(t, "id-1", FromContext(ctx))
	assert.Empty(t, FromContext(context.Background()))
}
