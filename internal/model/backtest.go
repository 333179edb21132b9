package model

// ExitReason explains why a trade was closed
type ExitReason string

const (
	ExitNone      ExitReason = ""
	ExitSignal    ExitReason = "signal"
	ExitStopLoss  ExitReason = "stopLoss"
	ExitEndOfData ExitReason = "endOfData"
)

// Position is the single open long position held by the simulator
type Position struct {
	EntryPrice float64 `json:"entry_price"`
	Quantity   float64 `json:"quantity"`
	PeakPrice  float64 `json:"peak_price"`
}

// Trade is one round trip. Exit fields stay nil while the trade is open and
// are set exactly once when it closes.
type Trade struct {
	EntryIndex     int        `json:"entry_index"`
	EntryTimestamp int64      `json:"entry_timestamp"`
	EntryPrice     float64    `json:"entry_price"`
	Quantity       float64    `json:"quantity"`
	ExitIndex      *int       `json:"exit_index"`
	ExitTimestamp  *int64     `json:"exit_timestamp"`
	ExitPrice      *float64   `json:"exit_price"`
	Profit         *float64   `json:"profit"`
	ExitReason     ExitReason `json:"exit_reason,omitempty"`
}

// Closed reports whether the trade has been finalized
func (t Trade) Closed() bool {
	return t.Profit != nil
}

// EquityPoint is the account value at one bar close
type EquityPoint struct {
	Timestamp int64   `json:"t"`
	Equity    float64 `json:"equity"`
}

// BacktestResult stores the outcome of one simulator run
type BacktestResult struct {
	Strategy       string        `json:"strategy"`
	InitialCapital float64       `json:"initial_capital"`
	FinalEquity    float64       `json:"final_equity"`
	TradeCount     int           `json:"trade_count"`
	Wins           int           `json:"wins"`
	Losses         int           `json:"losses"`
	WinRate        float64       `json:"win_rate"`
	MaxDrawdown    float64       `json:"max_drawdown"`
	TradeLog       []Trade       `json:"trade_log"`
	EquityCurve    []EquityPoint `json:"equity_curve"`
}
