package coach

import (
	"math"

	"metamotivation/internal/api"
)

// Trend classifies the recent motivation direction.
type Trend string

const (
	TrendAscending  Trend = "ascending"
	TrendDescending Trend = "descending"
	TrendStable     Trend = "stable"
)

// Consistency classifies emotional variability from the standard deviation
// of the last week of check-ins.
type Consistency string

const (
	ConsistencyHigh     Consistency = "very consistent"
	ConsistencyModerate Consistency = "moderately variable"
	ConsistencyLow      Consistency = "highly variable"
)

const (
	recentWindow = 10
	weekWindow   = 7
	// A trend needs more than this many recent entries to be meaningful.
	minTrendEntries = 3
)

// MotivationStats summarizes the recent check-in history for the prompt.
type MotivationStats struct {
	Count       int
	Mean        float64
	Latest      int
	Trend       Trend
	StdDev      float64
	Consistency Consistency
}

// ComputeMotivationStats derives summary statistics over the most recent
// check-ins. Entries arrive oldest first. Returns false when there is no
// history at all.
func ComputeMotivationStats(history []api.MotivationEntry) (MotivationStats, bool) {
	if len(history) == 0 {
		return MotivationStats{}, false
	}

	recent := history
	if len(recent) > recentWindow {
		recent = recent[len(recent)-recentWindow:]
	}

	var sum float64
	for _, e := range recent {
		sum += float64(e.MotivationLevel)
	}
	stats := MotivationStats{
		Count:  len(recent),
		Mean:   sum / float64(len(recent)),
		Latest: recent[len(recent)-1].MotivationLevel,
	}

	// Compare the latest value with the entry at the start of the window
	// (the value up to ten check-ins back).
	stats.Trend = TrendStable
	if len(recent) > minTrendEntries {
		oldest := recent[0].MotivationLevel
		switch {
		case stats.Latest > oldest:
			stats.Trend = TrendAscending
		case stats.Latest < oldest:
			stats.Trend = TrendDescending
		}
	}

	week := recent
	if len(week) > weekWindow {
		week = week[len(week)-weekWindow:]
	}
	stats.StdDev = stddev(week)
	switch {
	case stats.StdDev < 2:
		stats.Consistency = ConsistencyHigh
	case stats.StdDev < 3:
		stats.Consistency = ConsistencyModerate
	default:
		stats.Consistency = ConsistencyLow
	}

	return stats, true
}

func stddev(entries []api.MotivationEntry) float64 {
	if len(entries) < 2 {
		return 0
	}
	var sum float64
	for _, e := range entries {
		sum += float64(e.MotivationLevel)
	}
	mean := sum / float64(len(entries))

	var sq float64
	for _, e := range entries {
		d := float64(e.MotivationLevel) - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(entries)))
}

// Balance bands the overall questionnaire mean (score domain 1-7).
type Balance string

const (
	BalanceExcellent  Balance = "excellent balance"
	BalanceGood       Balance = "good balance"
	BalanceDeveloping Balance = "balance in development"
	BalanceNeedsWork  Balance = "needs work"
)

// QuestionnaireInsight summarizes the per-section averages for the prompt.
type QuestionnaireInsight struct {
	Sections    int
	Strongest   api.SectionScore
	Weakest     api.SectionScore
	OverallMean float64
	Balance     Balance
}

// ComputeQuestionnaireInsight finds the strongest and weakest sections and
// bands the overall mean. Returns false when no sections are available.
func ComputeQuestionnaireInsight(summary []api.SectionScore) (QuestionnaireInsight, bool) {
	if len(summary) == 0 {
		return QuestionnaireInsight{}, false
	}

	insight := QuestionnaireInsight{
		Sections:  len(summary),
		Strongest: summary[0],
		Weakest:   summary[0],
	}
	var sum float64
	for _, s := range summary {
		sum += s.AverageScore
		if s.AverageScore > insight.Strongest.AverageScore {
			insight.Strongest = s
		}
		if s.AverageScore < insight.Weakest.AverageScore {
			insight.Weakest = s
		}
	}
	insight.OverallMean = sum / float64(len(summary))

	switch {
	case insight.OverallMean >= 5.5:
		insight.Balance = BalanceExcellent
	case insight.OverallMean >= 4.5:
		insight.Balance = BalanceGood
	case insight.OverallMean >= 3.5:
		insight.Balance = BalanceDeveloping
	default:
		insight.Balance = BalanceNeedsWork
	}
	return insight, true
}
