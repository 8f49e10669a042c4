package intervals

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestMonthChunksSingleMonth(t *testing.T) {
	chunks := MonthChunks(day("2026-03-05"), day("2026-03-20"))
	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if !chunks[0].Start.Equal(day("2026-03-05")) {
		t.Errorf("Expected start 2026-03-05, got %s", chunks[0].Start.Format(DateFormat))
	}
	if !chunks[0].End.Equal(day("2026-03-20")) {
		t.Errorf("Expected end clamped to 2026-03-20, got %s", chunks[0].End.Format(DateFormat))
	}
}

func TestMonthChunksSpanMonths(t *testing.T) {
	chunks := MonthChunks(day("2026-01-15"), day("2026-03-10"))
	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(chunks))
	}

	expected := []DateRange{
		{Start: day("2026-01-15"), End: day("2026-01-31")},
		{Start: day("2026-02-01"), End: day("2026-02-28")},
		{Start: day("2026-03-01"), End: day("2026-03-10")},
	}
	for i, want := range expected {
		if !chunks[i].Start.Equal(want.Start) || !chunks[i].End.Equal(want.End) {
			t.Errorf("Chunk %d: expected %s..%s, got %s..%s", i,
				want.Start.Format(DateFormat), want.End.Format(DateFormat),
				chunks[i].Start.Format(DateFormat), chunks[i].End.Format(DateFormat))
		}
	}
}

func TestMonthChunksLeapFebruary(t *testing.T) {
	chunks := MonthChunks(day("2028-02-01"), day("2028-03-05"))
	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}
	if !chunks[0].End.Equal(day("2028-02-29")) {
		t.Errorf("Expected leap February to end on the 29th, got %s", chunks[0].End.Format(DateFormat))
	}
}

func TestMonthChunksCoverWithoutGapsOrOverlap(t *testing.T) {
	start := day("2024-11-20")
	end := day("2026-02-10")
	chunks := MonthChunks(start, end)

	if len(chunks) == 0 {
		t.Fatal("Expected chunks")
	}
	if !chunks[0].Start.Equal(start) {
		t.Errorf("Expected first chunk to start at %s, got %s",
			start.Format(DateFormat), chunks[0].Start.Format(DateFormat))
	}
	if !chunks[len(chunks)-1].End.Equal(end) {
		t.Errorf("Expected last chunk to end at %s, got %s",
			end.Format(DateFormat), chunks[len(chunks)-1].End.Format(DateFormat))
	}

	for i := 1; i < len(chunks); i++ {
		gap := chunks[i].Start.Sub(chunks[i-1].End)
		if gap != 24*time.Hour {
			t.Errorf("Expected chunk %d to start exactly one day after chunk %d ends, gap was %s", i, i-1, gap)
		}
	}
}

func TestMonthChunksStartAfterEnd(t *testing.T) {
	chunks := MonthChunks(day("2026-05-01"), day("2026-04-01"))
	if len(chunks) != 0 {
		t.Errorf("Expected no chunks for inverted range, got %d", len(chunks))
	}
}
