package cli

import (
	"sort"
	"strings"

	"github.com/atopofconscience/mehfil/internal/event"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByDate   SortOrder = "date"
	SortByName   SortOrder = "name"
	SortBySource SortOrder = "source"
)

// sortEvents sorts a slice of events based on the specified sort order
func sortEvents(events []*event.Event, sortOrder SortOrder) {
	switch sortOrder {
	case SortByDate:
		sort.Slice(events, func(i, j int) bool {
			return compareByDate(events[i], events[j])
		})
	case SortByName:
		sort.Slice(events, func(i, j int) bool {
			ni, nj := strings.ToLower(events[i].Name), strings.ToLower(events[j].Name)
			if ni != nj {
				return ni < nj
			}
			return compareByDate(events[i], events[j])
		})
	case SortBySource:
		sort.Slice(events, func(i, j int) bool {
			if events[i].Source != events[j].Source {
				return events[i].Source < events[j].Source
			}
			return compareByDate(events[i], events[j])
		})
	}
}

// compareByDate reports whether event i should come before event j. The
// canonical date format sorts lexically.
func compareByDate(i, j *event.Event) bool {
	if i.Date != j.Date {
		return i.Date < j.Date
	}
	return strings.ToLower(i.Name) < strings.ToLower(j.Name)
}
