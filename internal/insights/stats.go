package insights

import (
	"math"
	"time"

	"github.com/jonathan/applicant-tracker/internal/types"
)

// TopTierScore is the match score from which an applicant counts as top tier.
const TopTierScore = 80

// TrendMonths is the length of the monthly trend window.
const TrendMonths = 12

var weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// SkillCoverage converts skill counts into the rounded percentage of the pool listing each skill.
func SkillCoverage(counts map[string]int, poolSize int) map[string]int {
	out := make(map[string]int, len(counts))
	if poolSize <= 0 {
		return out
	}
	for skill, n := range counts {
		out[skill] = percent(n, poolSize)
	}
	return out
}

// Stats computes the pipeline statistics of a pool. Averages of an empty pool are zero.
func Stats(pool []types.Applicant) types.InsightStats {
	stats := types.InsightStats{
		TotalApplicants: len(pool),
		StatusBreakdown: make(map[types.ApplicantStatus]int, len(types.AllStatuses)),
	}
	for _, s := range types.AllStatuses {
		stats.StatusBreakdown[s] = 0
	}

	var experience, scoreSum int
	for _, a := range pool {
		experience += a.Experience
		if a.Status.Valid() {
			stats.StatusBreakdown[a.Status]++
		}
		if a.MatchScore == nil {
			continue
		}
		stats.ScoredApplicants++
		scoreSum += *a.MatchScore
		if *a.MatchScore > stats.TopMatchScore {
			stats.TopMatchScore = *a.MatchScore
		}
	}

	if stats.TotalApplicants > 0 {
		stats.AverageExperience = math.Round(float64(experience)/float64(stats.TotalApplicants)*10) / 10
	}
	if stats.ScoredApplicants > 0 {
		stats.AverageMatchScore = int(math.Round(float64(scoreSum) / float64(stats.ScoredApplicants)))
	}
	return stats
}

// MonthlyTrend counts applications per calendar month over the TrendMonths months ending with
// the month of now, oldest first.
func MonthlyTrend(pool []types.Applicant, now time.Time) []types.NamedValue {
	end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	start := end.AddDate(0, -(TrendMonths - 1), 0)

	out := make([]types.NamedValue, TrendMonths)
	for i := range out {
		out[i].Name = start.AddDate(0, i, 0).Month().String()[:3]
	}
	for _, a := range pool {
		created := a.CreatedAt.In(now.Location())
		idx := (created.Year()-start.Year())*12 + int(created.Month()) - int(start.Month())
		if idx >= 0 && idx < TrendMonths {
			out[idx].Value++
		}
	}
	return out
}

// WeekdayTrend counts applications per weekday, Monday first.
func WeekdayTrend(pool []types.Applicant) []types.NamedValue {
	counts := make(map[time.Weekday]int, len(weekdays))
	for _, a := range pool {
		if !a.CreatedAt.IsZero() {
			counts[a.CreatedAt.Weekday()]++
		}
	}
	out := make([]types.NamedValue, len(weekdays))
	for i, d := range weekdays {
		out[i] = types.NamedValue{Name: d.String(), Value: counts[d]}
	}
	return out
}

func percent(n, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(total) * 100))
}
