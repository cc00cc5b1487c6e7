package env

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("MC_TEST_BOOL", "true")
	t.Setenv("MC_TEST_BAD_BOOL", "maybe")
	t.Setenv("MC_TEST_INT", " 42 ")
	t.Setenv("MC_TEST_FLOAT", "0.25")
	t.Setenv("MC_TEST_STRING", "value")

	require.True(t, Bool("MC_TEST_BOOL", false))
	require.True(t, Bool("MC_TEST_BAD_BOOL", true))
	require.False(t, Bool("MC_TEST_UNSET", false))
	require.Equal(t, 42, Int("MC_TEST_INT", 0))
	require.Equal(t, 7, Int("MC_TEST_UNSET", 7))
	require.InDelta(t, 0.25, Float64("MC_TEST_FLOAT", 0), 1e-9)
	require.Equal(t, "value", String("MC_TEST_STRING", "fallback"))
	require.Equal(t, "fallback", String("MC_TEST_UNSET", "fallback"))
}
