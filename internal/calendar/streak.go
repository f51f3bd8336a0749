package calendar

import "time"

// CountByDate tallies timestamps per local YYYY-MM-DD date.
func CountByDate(timestamps []time.Time, loc *time.Location) map[string]int {
	counts := make(map[string]int)
	for _, ts := range timestamps {
		counts[LocalDate(ts, loc)]++
	}
	return counts
}

// Streak counts consecutive local days with at least one timestamp, walking
// back from the day containing now. If today has nothing the count starts at
// yesterday instead; if neither has anything the streak is zero.
func Streak(timestamps []time.Time, now time.Time, loc *time.Location) int {
	if len(timestamps) == 0 {
		return 0
	}

	days := make(map[string]bool, len(timestamps))
	for _, ts := range timestamps {
		days[LocalDate(ts, loc)] = true
	}

	today := now.In(loc)
	cursor := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc)
	if !days[cursor.Format(dateLayout)] {
		cursor = cursor.AddDate(0, 0, -1)
		if !days[cursor.Format(dateLayout)] {
			return 0
		}
	}

	streak := 0
	for days[cursor.Format(dateLayout)] {
		streak++
		// AddDate keeps us on local midnight across DST changes.
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}
