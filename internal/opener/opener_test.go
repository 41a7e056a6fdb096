package opener

import (
	"context"
	"os/exec"
	"testing"

	"books-storefront/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemOpen(t *testing.T) {
	var got string
	s := NewSystem(logging.Discard())
	s.command = func(ctx context.Context, rawURL string) *exec.Cmd {
		got = rawURL
		return exec.CommandContext(ctx, "true")
	}

	require.NoError(t, s.Open(context.Background(), "https://pay.example/checkout?id=1"))
	assert.Equal(t, "https://pay.example/checkout?id=1", got)

	assert.Error(t, s.Open(context.Background(), "file:///etc/passwd"))
	assert.Error(t, s.Open(context.Background(), "javascript:alert(1)"))
}

func TestPageOpen(t *testing.T) {
	p := NewPage(logging.Discard())
	assert.NoError(t, p.Open(context.Background(), "https://pay.example/x"))
	assert.Error(t, p.Open(context.Background(), "::not a url"))
}
