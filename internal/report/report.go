// Package report persists run results as JSON files.
package report

import (
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"github.com/Alias1177/Backtester/internal/model"
)

// Entry is one strategy run against one test case
type Entry struct {
	Test     string                    `json:"test"`
	Pair     string                    `json:"pair"`
	Interval string                    `json:"interval"`
	Bars     int                       `json:"bars"`
	Strategy string                    `json:"strategy"`
	Params   map[string]float64        `json:"params,omitempty"`
	Metrics  *model.PerformanceSummary `json:"metrics"`
	Result   *model.BacktestResult     `json:"result"`
}

// WriteJSON writes v as indented JSON to path, creating parent directories
func WriteJSON(path string, v any) error {
	data, err := sonic.ConfigDefault.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding report")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating directory for %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}
