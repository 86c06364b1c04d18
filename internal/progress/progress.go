package progress

import (
	"fmt"
	"gdp-etl/internal/assert"
	"gdp-etl/internal/chrono"
	"log/slog"
	"os"

	"github.com/ncruces/go-strftime"
)

// TimestampFormat renders as Year-MonthName-Day-Hour:Minute:Second.
const TimestampFormat = "%Y-%h-%d-%H:%M:%S"

const (
	Started     = "Preliminaries complete. Initiating ETL process"
	Extracted   = "Data extraction complete. Initiating Transformation process"
	Transformed = "Data transformation complete. Initiating loading process"
	SavedCSV    = "Data saved to CSV file"
	Connected   = "SQL Connection initiated."
	Loaded      = "Data loaded to Database as table. Running the query"
	Complete    = "Process Complete."
)

// Logger appends timestamped lines to a file that is opened and closed
// on every call.
type Logger struct {
	path string
	time chrono.TimeAPI
}

func NewLogger(path string, time chrono.TimeAPI) Logger {
	assert.NotEmptyStr("path", path)
	if time == nil {
		time = chrono.NewStandardTime()
	}
	return Logger{path: path, time: time}
}

// Line formats a single log line, newline included.
func (l Logger) Line(message string) string {
	return fmt.Sprintf("%s : %s\n", strftime.Format(TimestampFormat, l.time.Now()), message)
}

func (l Logger) Log(message string) error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open progress log: %w", err)
	}
	_, err = f.WriteString(l.Line(message))
	if err != nil {
		f.Close()
		return fmt.Errorf("write progress log: %w", err)
	}
	slog.Debug("progress", "message", message)
	return f.Close()
}
