package features

import (
	"sort"
	"time"

	"helios/internal/domain"
	"helios/internal/util"
)

// Rolling windows for insider features, in calendar days.
const (
	insiderWeekDays     = 7
	insiderMonthDays    = 30
	insiderTriMonthDays = 91
)

// ComputeInsiderFeatures derives per-day insider-pressure ratios for one
// ticker from its daily aggregates: buyer change = remaining holdings over
// net traded value, trade direction = net value over gross volume, each
// over the trailing day, week, month, and tri-month calendar windows.
// Division by a zero denominator yields 0. The result maps each aggregate
// day to its features.
func ComputeInsiderFeatures(days []domain.InsiderDay) map[time.Time]domain.InsiderFeatures {
	sorted := make([]domain.InsiderDay, len(days))
	copy(sorted, days)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	out := make(map[time.Time]domain.InsiderFeatures, len(sorted))
	for i := range sorted {
		d := &sorted[i]
		day := util.Day(d.Date)

		weekValue, weekVolume, weekRemaining := windowSums(sorted, i, insiderWeekDays)
		monthValue, monthVolume, monthRemaining := windowSums(sorted, i, insiderMonthDays)
		triValue, triVolume, triRemaining := windowSums(sorted, i, insiderTriMonthDays)

		out[day] = domain.InsiderFeatures{
			BuyerChangeDay:         ratio(d.Remaining, d.Value),
			BuyerChangeWeek:        ratio(weekRemaining, weekValue),
			BuyerChangeMonth:       ratio(monthRemaining, monthValue),
			BuyerChangeTriMonth:    ratio(triRemaining, triValue),
			TradeDirectionDay:      ratio(d.Value, d.Volume),
			TradeDirectionWeek:     ratio(weekValue, weekVolume),
			TradeDirectionMonth:    ratio(monthValue, monthVolume),
			TradeDirectionTriMonth: ratio(triValue, triVolume),
		}
	}
	return out
}

// windowSums sums value, volume, and remaining over the trailing window
// ending at row i (inclusive), bounded by calendar days.
func windowSums(days []domain.InsiderDay, i, windowDays int) (value, volume, remaining float64) {
	cutoff := util.Day(days[i].Date).AddDate(0, 0, -windowDays)
	for j := i; j >= 0; j-- {
		if !util.Day(days[j].Date).After(cutoff) {
			break
		}
		value += days[j].Value
		volume += days[j].Volume
		remaining += days[j].Remaining
	}
	return value, volume, remaining
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return finiteOrZero(num / den)
}
