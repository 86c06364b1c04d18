package chrono

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFixedTime(t *testing.T) {
	start := time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC)
	clock := NewFixedTime(start, time.Minute)

	require.Equal(t, start, clock.Now())
	require.Equal(t, start.Add(time.Minute), clock.Now())

	frozen := NewFixedTime(start, 0)
	require.Equal(t, start, frozen.Now())
	require.Equal(t, start, frozen.Now())
}
