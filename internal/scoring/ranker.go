package scoring

import "sort"

// RankedList is one scope's ordered ranking. Entries are sorted best-first
// and hold dense sequential ranks starting at 1; the index gives O(1) lookup
// by student id.
type RankedList struct {
	entries []RankedStudent
	index   map[string]int
}

// Rank orders the scored students of one scope and assigns ranks. The sort
// is a total order (totalScore desc, then avgImprovement desc, then
// weeklyStudyDays desc, then studentID asc), so ties in score still receive
// distinct sequential ranks and the output is reproducible for equal input.
// The input slice is not modified.
func Rank(students []ScoredStudent) *RankedList {
	sorted := make([]ScoredStudent, len(students))
	copy(sorted, students)

	sort.Slice(sorted, func(i, j int) bool {
		return rankLess(sorted[i], sorted[j])
	})

	entries := make([]RankedStudent, len(sorted))
	index := make(map[string]int, len(sorted))
	for i, s := range sorted {
		entries[i] = RankedStudent{ScoredStudent: s, Rank: i + 1}
		index[s.ID] = i
	}

	return &RankedList{entries: entries, index: index}
}

func rankLess(a, b ScoredStudent) bool {
	if a.TotalScore != b.TotalScore {
		return a.TotalScore > b.TotalScore
	}
	if a.Metrics.AvgImprovement != b.Metrics.AvgImprovement {
		return a.Metrics.AvgImprovement > b.Metrics.AvgImprovement
	}
	if a.Metrics.WeeklyStudyDays != b.Metrics.WeeklyStudyDays {
		return a.Metrics.WeeklyStudyDays > b.Metrics.WeeklyStudyDays
	}
	return a.ID < b.ID
}

// Lookup returns the ranked entry for a student id.
func (l *RankedList) Lookup(studentID string) (RankedStudent, bool) {
	i, ok := l.index[studentID]
	if !ok {
		return RankedStudent{}, false
	}
	return l.entries[i], true
}

// Top returns the first n entries. Truncation is a view over the already
// computed ranking, never a recomputation.
func (l *RankedList) Top(n int) []RankedStudent {
	if n <= 0 {
		return nil
	}
	if n > len(l.entries) {
		n = len(l.entries)
	}
	result := make([]RankedStudent, n)
	copy(result, l.entries[:n])
	return result
}

// All returns a copy of every entry in rank order.
func (l *RankedList) All() []RankedStudent {
	result := make([]RankedStudent, len(l.entries))
	copy(result, l.entries)
	return result
}

func (l *RankedList) Len() int {
	return len(l.entries)
}
