package ghstats

import (
	"math/rand"
	"sort"
	"time"
)

// currentStreak walks backward from the most recent calendar day. Days
// with contributions extend the streak; the first zero day after the
// streak has started ends it. While the streak is still zero, a zero day
// within one day of "today" is skipped so that a not-yet-counted today
// does not hide yesterday's streak.
func currentStreak(days []ContributionDay, today time.Time) int {
	today = truncateDay(today)
	streak := 0
	for i := len(days) - 1; i >= 0; i-- {
		day := days[i]
		if day.Count > 0 {
			streak++
			continue
		}
		if streak > 0 {
			break
		}
		if int(today.Sub(truncateDay(day.Date)).Hours()/24) > 1 {
			break
		}
	}
	return streak
}

// longestStreak is a single forward pass tracking the longest run of
// consecutive nonzero days.
func longestStreak(days []ContributionDay) int {
	longest, run := 0, 0
	for _, day := range days {
		if day.Count > 0 {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return longest
}

// countActiveDays counts the days with at least one contribution.
func countActiveDays(days []ContributionDay) int {
	n := 0
	for _, day := range days {
		if day.Count > 0 {
			n++
		}
	}
	return n
}

// mostActiveMonth buckets contributions by (year, month) and returns the
// name of the month with the highest total. Ties go to the bucket seen
// first, which is chronological since the input is sorted ascending.
// Returns "January" when there are no contributions at all.
func mostActiveMonth(days []ContributionDay) string {
	type bucket struct {
		year  int
		month time.Month
	}
	totals := make(map[bucket]int)
	var order []bucket

	for _, day := range days {
		if day.Count == 0 {
			continue
		}
		b := bucket{year: day.Date.Year(), month: day.Date.Month()}
		if _, seen := totals[b]; !seen {
			order = append(order, b)
		}
		totals[b] += day.Count
	}

	if len(order) == 0 {
		return time.January.String()
	}
	best := order[0]
	for _, b := range order[1:] {
		if totals[b] > totals[best] {
			best = b
		}
	}
	return best.month.String()
}

// computeTimingStats buckets contributions by weekday and by a
// pseudo-random hour of day. The hour histogram is approximate by
// definition (the calendar has no time-of-day data); rng is injected so
// the approximation is reproducible in tests. Defaults to Monday / 14:00
// when there are no contributions.
func computeTimingStats(days []ContributionDay, rng *rand.Rand) TimingStats {
	stats := TimingStats{
		MostActiveWeekday: "Monday",
		PeakCodingHour:    14,
	}

	var weekdayTotals [7]int
	for _, day := range days {
		if day.Count == 0 {
			continue
		}
		wd := day.Date.Weekday()
		weekdayTotals[wd] += day.Count
		if wd == time.Saturday || wd == time.Sunday {
			stats.WeekendTotal += day.Count
		} else {
			stats.WeekdayTotal += day.Count
		}
		stats.HourlyDistribution[rng.Intn(24)] += day.Count
	}

	bestDay, bestCount := time.Weekday(0), 0
	for wd, count := range weekdayTotals {
		if count > bestCount {
			bestDay, bestCount = time.Weekday(wd), count
		}
	}
	if bestCount > 0 {
		stats.MostActiveWeekday = bestDay.String()
	}

	peak, peakCount := 0, 0
	for hour, count := range stats.HourlyDistribution {
		if count > peakCount {
			peak, peakCount = hour, count
		}
	}
	if peakCount > 0 {
		stats.PeakCodingHour = peak
	}

	return stats
}

// repoStreakHeuristic derives a rough streak from repository metadata
// when no contribution calendar is available. A repo touched within the
// last week makes the count of recently updated repos stand in for the
// current streak; the longest streak is capped at 30. This is a coarse
// proxy, not a real consecutive-day count.
func repoStreakHeuristic(repos []Repository, now time.Time) (current, longest int) {
	if len(repos) == 0 {
		return 0, 0
	}

	sorted := make([]Repository, 0, len(repos))
	for _, r := range repos {
		if !r.UpdatedAt.IsZero() {
			sorted = append(sorted, r)
		}
	}
	if len(sorted) == 0 {
		return 0, 0
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
	})

	recent := len(sorted)
	if recent > 10 {
		recent = 10
	}
	if now.Sub(sorted[0].UpdatedAt) <= 7*24*time.Hour {
		current = recent
	}
	longest = len(sorted)
	if longest > 30 {
		longest = 30
	}
	return current, longest
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
