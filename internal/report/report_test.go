package report

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"

	"github.com/Alias1177/Backtester/internal/model"
)

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "backtest_results.json")
	entries := []Entry{{
		Test:     "BTCUSDT 5m x100",
		Pair:     "BTCUSDT",
		Interval: "5m",
		Bars:     100,
		Strategy: "crossover(rsi30-70,sl0.05)",
		Metrics:  &model.PerformanceSummary{ProfitFactor: math.Inf(1), Sharpe: math.NaN()},
		Result:   &model.BacktestResult{InitialCapital: 1000, FinalEquity: 1100},
	}}

	if err := WriteJSON(path, entries); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Errorf("output is not indented:\n%s", data)
	}

	var decoded []map[string]any
	if err := sonic.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 1 || decoded[0]["strategy"] != "crossover(rsi30-70,sl0.05)" {
		t.Fatalf("decoded = %v", decoded)
	}
	metrics, ok := decoded[0]["metrics"].(map[string]any)
	if !ok {
		t.Fatalf("metrics = %T, want object", decoded[0]["metrics"])
	}
	if metrics["profit_factor"] != "Inf" {
		t.Errorf("profit_factor = %v, want \"Inf\"", metrics["profit_factor"])
	}
	if v, present := metrics["sharpe"]; !present || v != nil {
		t.Errorf("sharpe = %v, want null", v)
	}
	result := decoded[0]["result"].(map[string]any)
	if result["final_equity"] != 1100.0 {
		t.Errorf("final_equity = %v, want 1100", result["final_equity"])
	}
}

func TestWriteJSONUnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteJSON(filepath.Join(blocker, "out.json"), 1); err == nil {
		t.Error("WriteJSON under a regular file returned no error")
	}
}
