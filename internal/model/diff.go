package model

import "slices"

// LinkDiff is the difference between the invite links of two crawls.
// Every slice is sorted and never nil.
type LinkDiff struct {
	// Added are links in the current crawl only.
	Added []string `json:"added"`

	// Removed are links in the previous crawl only.
	Removed []string `json:"removed"`

	// Unchanged are links present in both.
	Unchanged []string `json:"unchanged"`
}

// DiffLinks compares two link lists. Duplicates are ignored.
func DiffLinks(previous, current []string) LinkDiff {
	prev := make(map[string]struct{}, len(previous))
	for _, l := range previous {
		prev[l] = struct{}{}
	}
	cur := make(map[string]struct{}, len(current))
	for _, l := range current {
		cur[l] = struct{}{}
	}

	d := LinkDiff{Added: []string{}, Removed: []string{}, Unchanged: []string{}}
	for l := range cur {
		if _, ok := prev[l]; ok {
			d.Unchanged = append(d.Unchanged, l)
		} else {
			d.Added = append(d.Added, l)
		}
	}
	for l := range prev {
		if _, ok := cur[l]; !ok {
			d.Removed = append(d.Removed, l)
		}
	}
	slices.Sort(d.Added)
	slices.Sort(d.Removed)
	slices.Sort(d.Unchanged)
	return d
}

// Changed reports whether the two crawls found different links.
func (d LinkDiff) Changed() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0
}
