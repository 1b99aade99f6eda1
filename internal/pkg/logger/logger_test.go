package logger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeValue(t *testing.T) {
	require.Equal(t, "[REDACTED]", sanitizeValue("reflection_short", "cried a lot"))
	require.Equal(t, "[REDACTED]", sanitizeValue("postgres_dsn", "postgres://u:p@h/db"))
	require.Equal(t, 3, sanitizeValue("n_treated", 3))

	hashed, ok := sanitizeValue("user_id", "4b0f6a3e-1111-2222-3333-444455556666").(string)
	require.True(t, ok)
	require.True(t, strings.HasPrefix(hashed, "hash:"))
	require.Len(t, hashed, len("hash:")+12)
	require.Equal(t, hashed, hashValue("4b0f6a3e-1111-2222-3333-444455556666"))
}

func TestSanitizeKVsOddLength(t *testing.T) {
	out := sanitizeKVs([]interface{}{"stage", "fit", "dangling"})
	require.Equal(t, []interface{}{"stage", "fit", "dangling"}, out)
}
