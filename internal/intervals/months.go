package intervals

import "time"

// DateRange is an inclusive calendar-date span
type DateRange struct {
	Start time.Time
	End   time.Time
}

// MonthChunks splits [start, end] into chunks bounded by the last day of each
// calendar month. The chunks cover the span exactly: no gaps, no overlap.
func MonthChunks(start, end time.Time) []DateRange {
	start = truncateToDay(start)
	end = truncateToDay(end)

	var chunks []DateRange
	current := start
	for !current.After(end) {
		// Day zero of the next month is the last day of this one
		monthEnd := time.Date(current.Year(), current.Month()+1, 0, 0, 0, 0, 0, current.Location())

		chunkEnd := monthEnd
		if chunkEnd.After(end) {
			chunkEnd = end
		}

		chunks = append(chunks, DateRange{Start: current, End: chunkEnd})
		current = chunkEnd.AddDate(0, 0, 1)
	}
	return chunks
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
