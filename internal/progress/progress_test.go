package progress

import (
	"gdp-etl/internal/chrono"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var linePattern = regexp.MustCompile(`^\d{4}-[A-Z][a-z]{2}-\d{2}-\d{2}:\d{2}:\d{2} : .+$`)

func TestLine(t *testing.T) {
	clock := chrono.NewFixedTime(time.Date(2024, time.March, 5, 14, 7, 9, 0, time.Local), 0)
	logger := NewLogger("unused", clock)

	require.Equal(t, "2024-Mar-05-14:07:09 : Process Complete.\n", logger.Line(Complete))
}

func TestLogAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etl_project_log.txt")
	require.NoError(t, os.WriteFile(path, []byte("earlier run\n"), 0644))

	clock := chrono.NewFixedTime(time.Date(2023, time.September, 2, 18, 53, 26, 0, time.Local), time.Second)
	logger := NewLogger(path, clock)

	messages := []string{Started, Extracted, Transformed, SavedCSV, Connected, Loaded}
	for _, m := range messages {
		require.NoError(t, logger.Log(m))
	}

	contents, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(contents), "\n"), "\n")
	require.Len(t, lines, 7)
	require.Equal(t, "earlier run", lines[0])
	for i, m := range messages {
		line := lines[i+1]
		require.Regexp(t, linePattern, line)
		require.True(t, strings.HasSuffix(line, " : "+m), line)
	}
	require.Equal(t, "2023-Sep-02-18:53:26 : "+Started, lines[1])
	require.Equal(t, "2023-Sep-02-18:53:31 : "+Loaded, lines[6])
}

func TestLogCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh.txt")
	logger := NewLogger(path, nil)

	require.NoError(t, logger.Log(Started))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Regexp(t, linePattern, strings.TrimSuffix(string(contents), "\n"))
}

func TestLogBadPath(t *testing.T) {
	logger := NewLogger(filepath.Join(t.TempDir(), "missing", "log.txt"), nil)
	require.Error(t, logger.Log(Started))
}
