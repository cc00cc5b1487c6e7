package helper

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenRequestID(t *testing.T) {
	a := GenRequestID()
	require.NotEmpty(t, a)
	require.GreaterOrEqual(t, len(a), len("20060102150405"))
}

func TestMessageWithRequestId(t *testing.T) {
	require.Equal(t, "boom (request id: 42)", MessageWithRequestId("boom", "42"))
	require.Equal(t, "boom", MessageWithRequestId("boom", ""))
}
