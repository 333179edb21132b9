// Package features turns indicator snapshots into labeled rows for model
// training and loads the resulting predictions back as entry labels.
package features

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/parquet-go/parquet-go"

	"github.com/Alias1177/Backtester/internal/model"
)

// Row is the Parquet schema of one feature row. Indicator columns are null
// while the indicator is still warming up.
type Row struct {
	Timestamp  int64    `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Close      float64  `parquet:"close"`
	MA5        *float64 `parquet:"ma5,optional"`
	MA7        *float64 `parquet:"ma7,optional"`
	MA20       *float64 `parquet:"ma20,optional"`
	MA50       *float64 `parquet:"ma50,optional"`
	RSI        *float64 `parquet:"rsi,optional"`
	ATR        *float64 `parquet:"atr,optional"`
	ADX        *float64 `parquet:"adx,optional"`
	BBWidth    *float64 `parquet:"bb_width,optional"`
	Vol20      *float64 `parquet:"vol20,optional"`
	Volume     float64  `parquet:"volume"`
	MACD       *float64 `parquet:"macd,optional"`
	MACDSignal *float64 `parquet:"macd_signal,optional"`
	Label      int32    `parquet:"label"`
}

// LabelOptions controls how rows are labeled. A row is labeled 1 when the
// close Horizon bars later is more than Threshold above the current close.
type LabelOptions struct {
	Horizon   int
	Threshold float64
	Start     int // first bar index considered
}

func DefaultLabelOptions() LabelOptions {
	return LabelOptions{Horizon: 12, Threshold: 0.002, Start: 60}
}

// BuildRows builds one labeled row per bar that has a snapshot and a bar
// Horizon steps ahead.
func BuildRows(bars []model.Bar, snaps []*model.Snapshot, opts LabelOptions) ([]Row, error) {
	if len(bars) != len(snaps) {
		return nil, fmt.Errorf("got %d bars but %d snapshots", len(bars), len(snaps))
	}
	if opts.Horizon <= 0 {
		return nil, fmt.Errorf("horizon must be positive, got %d", opts.Horizon)
	}

	var rows []Row
	for i := max(opts.Start, 0); i < len(bars)-opts.Horizon; i++ {
		snap := snaps[i]
		if snap == nil {
			continue
		}

		row := Row{
			Timestamp: bars[i].Timestamp,
			Close:     bars[i].Close,
			MA5:       snap.MA5,
			MA7:       snap.MA7,
			MA20:      snap.MA20,
			MA50:      snap.MA50,
			RSI:       snap.RSI,
			ATR:       snap.ATR,
			ADX:       snap.ADX,
			Vol20:     snap.AvgVolume20,
			Volume:    snap.Volume,
		}
		if snap.Bollinger != nil {
			width := snap.Bollinger.Width
			row.BBWidth = &width
		}
		if snap.MACD != nil {
			macd, signal := snap.MACD.Value, snap.MACD.Signal
			row.MACD = &macd
			row.MACDSignal = &signal
		}

		if bars[i].Close != 0 {
			ret := (bars[i+opts.Horizon].Close - bars[i].Close) / bars[i].Close
			if ret > opts.Threshold {
				row.Label = 1
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteParquet writes rows to path, creating parent directories
func WriteParquet(path string, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := parquet.WriteFile(path, rows); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ReadParquet reads rows written by WriteParquet
func ReadParquet(path string) ([]Row, error) {
	rows, err := parquet.ReadFile[Row](path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return rows, nil
}

// Prediction is one model output keyed by bar timestamp
type Prediction struct {
	Timestamp int64 `json:"timestamp"`
	Pred      int   `json:"pred"`
}

// LoadPredictions reads a JSON array of predictions and returns the entry
// labels by timestamp. Only a prediction of 1 marks an entry.
func LoadPredictions(path string) (map[int64]bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading predictions: %w", err)
	}

	var preds []Prediction
	if err := sonic.Unmarshal(data, &preds); err != nil {
		return nil, fmt.Errorf("parsing predictions %s: %w", path, err)
	}

	labels := make(map[int64]bool, len(preds))
	for _, p := range preds {
		labels[p.Timestamp] = p.Pred == 1
	}
	return labels, nil
}
