package app

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionSecret(t *testing.T) {
	t.Run("configured secret is used as-is", func(t *testing.T) {
		secret, generated, err := sessionSecret("0123456789abcdef0123456789abcdef")
		require.NoError(t, err)
		require.False(t, generated)
		require.Equal(t, []byte("0123456789abcdef0123456789abcdef"), secret)
	})

	t.Run("empty config generates a real key", func(t *testing.T) {
		secret, generated, err := sessionSecret("")
		require.NoError(t, err)
		require.True(t, generated)
		require.Len(t, secret, 32)
		require.NotEqual(t, make([]byte, 32), secret)
	})
}
