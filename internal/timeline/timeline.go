package timeline

import (
	"sort"
	"time"

	"github.com/mgpai22/subplay/internal/subtitle"
)

// TimeIndex answers which cue is on screen at a given media time. It never
// changes after construction and is safe for concurrent readers.
type TimeIndex struct {
	cues []subtitle.Cue
	// maxEnd[i] is the latest End among cues[0..i]; non-decreasing
	maxEnd []time.Duration
}

// New copies cues and orders them by start time. The sort is stable so
// overlapping cues keep their original order.
func New(cues []subtitle.Cue) *TimeIndex {
	sorted := make([]subtitle.Cue, len(cues))
	copy(sorted, cues)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})
	maxEnd := make([]time.Duration, len(sorted))
	for i, c := range sorted {
		maxEnd[i] = c.End
		if i > 0 && maxEnd[i-1] > c.End {
			maxEnd[i] = maxEnd[i-1]
		}
	}
	return &TimeIndex{cues: sorted, maxEnd: maxEnd}
}

func (x *TimeIndex) Len() int {
	return len(x.cues)
}

// cue at position i in start order
func (x *TimeIndex) Cue(i int) subtitle.Cue {
	return x.cues[i]
}

// ActiveIndex returns the position of the first cue, in sequence order,
// whose [Start, End] range contains t, or -1 when t falls in a gap.
func (x *TimeIndex) ActiveIndex(t time.Duration) int {
	// first cue starting after t; everything before it is a candidate
	upper := sort.Search(len(x.cues), func(i int) bool {
		return x.cues[i].Start > t
	})

	// cues before lower all end before t
	lower := sort.Search(upper, func(i int) bool {
		return x.maxEnd[i] >= t
	})

	for i := lower; i < upper; i++ {
		if x.cues[i].Contains(t) {
			return i
		}
	}
	return -1
}

func (x *TimeIndex) ActiveAt(t time.Duration) (subtitle.Cue, bool) {
	i := x.ActiveIndex(t)
	if i < 0 {
		return subtitle.Cue{}, false
	}
	return x.cues[i], true
}
