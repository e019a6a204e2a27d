package logger

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingKeepsRecentLines(t *testing.T) {
	var r ringBuffer
	for i := 0; i < ringCapacity+10; i++ {
		_, err := r.Write([]byte(fmt.Sprintf("line-%d\n", i)))
		require.NoError(t, err)
	}

	lines := r.Lines()
	require.Len(t, lines, ringCapacity)
	assert.Equal(t, "line-10", lines[0])
	assert.Equal(t, fmt.Sprintf("line-%d", ringCapacity+9), lines[len(lines)-1])
}

func TestSafeHeadersRedactsSensitive(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/instances", nil)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("X-Request-Id", "abc")

	s := SafeHeaders(req)
	assert.Contains(t, s, "Authorization=<redacted>")
	assert.Contains(t, s, "X-Request-Id=abc")
	assert.NotContains(t, s, "secret")
}
