package risk

import "math"

// PercentStop returns the stop-loss price pct below entry. A non-positive pct
// disables the stop and yields 0.
func PercentStop(entry, pct float64) float64 {
	if pct <= 0 {
		return 0
	}
	return entry * (1 - pct)
}

// PercentTarget returns the take-profit price pct above entry, or +Inf when
// pct is not positive.
func PercentTarget(entry, pct float64) float64 {
	if pct <= 0 {
		return math.Inf(1)
	}
	return entry * (1 + pct)
}

// ATRStop places the stop atrMultiplier average true ranges below entry
func ATRStop(entry, atr, atrMultiplier float64) float64 {
	return entry - atrMultiplier*atr
}

// ATRTarget places the target at rewardRatio times the ATR stop distance above entry
func ATRTarget(entry, atr, atrMultiplier, rewardRatio float64) float64 {
	return entry + atrMultiplier*atr*rewardRatio
}

// TrailingStop returns the exit level pct below the highest price seen since
// entry. A non-positive pct or peak disables it and yields 0.
func TrailingStop(peak, pct float64) float64 {
	if pct <= 0 || peak <= 0 {
		return 0
	}
	return peak * (1 - pct)
}

// RiskRewardRatio is the distance to target divided by the distance to stop
func RiskRewardRatio(entry, stop, target float64) float64 {
	stopDistance := math.Abs(entry - stop)
	if stopDistance == 0 || math.IsInf(target, 0) {
		return 0
	}
	return math.Abs(target-entry) / stopDistance
}

// ClampFraction bounds the share of cash committed on entry to (0, 1].
// Non-finite or non-positive fractions fall back to 1.
func ClampFraction(fraction float64) float64 {
	if math.IsNaN(fraction) || fraction <= 0 {
		return 1
	}
	if fraction > 1 {
		return 1
	}
	return fraction
}
