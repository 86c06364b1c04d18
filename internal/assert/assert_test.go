package assert

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNotEmptyStr(t *testing.T) {
	require.NotPanics(t, func() { NotEmptyStr("path", "log.txt") })
	require.PanicsWithValue(t, "expected path to be non-empty", func() { NotEmptyStr("path", "") })
}

func TestNotNil(t *testing.T) {
	require.NotPanics(t, func() { NotNil("db", 1) })
	require.PanicsWithValue(t, "expected db to be not nil", func() { NotNil("db", nil) })
}
