package datalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/dvoicu/process-simulator/internal/core"
)

// header row written once when the log file is first created
var header = []string{"Timestamp", "Date_Time", "Analog_Value", "Digital_Value", "Status"}

// Logger appends tick records to a CSV file. Every write opens, appends and
// releases the file, so a handle never outlives one record. Records are never
// rewritten or evicted.
type Logger struct {
	path string
}

// New prepares the log file: the parent directory is created if missing and
// the header row is written when the file does not exist yet.
func New(path string) (*Logger, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create log directory")
		}
	}

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrap(err, "stat log file")
		}
		if err := writeHeader(path); err != nil {
			return nil, err
		}
	}

	return &Logger{path: path}, nil
}

func writeHeader(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create log file")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return errors.Wrap(err, "write log header")
	}
	w.Flush()
	return errors.Wrap(w.Error(), "flush log header")
}

// Name identifies this sink in diagnostics
func (l *Logger) Name() string {
	return "csv"
}

// Path returns the log file location
func (l *Logger) Path() string {
	return l.path
}

// Append writes one record: simulation time with two decimals, wall clock,
// analog value with four decimals, digital value and status text.
func (l *Logger) Append(s core.Sample) error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "open log file")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	record := []string{
		fmt.Sprintf("%.2f", s.Time),
		s.Timestamp.Format("2006-01-02 15:04:05"),
		fmt.Sprintf("%.4f", s.Analog),
		fmt.Sprintf("%d", s.Digital),
		s.StatusText,
	}
	if err := w.Write(record); err != nil {
		return errors.Wrap(err, "write log record")
	}
	w.Flush()
	return errors.Wrap(w.Error(), "flush log record")
}
