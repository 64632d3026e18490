package shared

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// SetupLogger builds the root logger at the named level.
func SetupLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = os.Stderr
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
	}), nil
}
