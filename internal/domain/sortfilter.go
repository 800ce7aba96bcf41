package domain

import "sort"

// Filter narrows the inbox to a single item type.
type Filter string

const (
	FilterAll    Filter = "all"
	FilterLinks  Filter = "links"
	FilterText   Filter = "text"
	FilterImages Filter = "images"
)

// Sort selects the comparison key for inbox ordering.
type Sort string

const (
	SortDate  Sort = "date"
	SortName  Sort = "name"
	SortLabel Sort = "label"
)

// SortAndFilter returns the items ordered by the chosen sort and narrowed by
// the chosen filter. The sort is stable, so ties keep their original relative
// order. The input slice is not modified.
//
// The engine is partition-agnostic: it knows nothing about pinning. Callers
// that want pinned items surfaced first apply PartitionPinned on the result.
func SortAndFilter(items []Item, filter Filter, by Sort) []Item {
	sorted := make([]Item, len(items))
	copy(sorted, items)

	switch by {
	case SortName:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Text < sorted[j].Text
		})
	case SortLabel:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Label < sorted[j].Label
		})
	default: // SortDate: newest first
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		})
	}

	if filter == FilterAll || filter == "" {
		return sorted
	}
	want := map[Filter]ItemType{
		FilterLinks:  TypeLink,
		FilterText:   TypeText,
		FilterImages: TypeImage,
	}[filter]

	out := sorted[:0]
	for _, it := range sorted {
		if it.Type == want {
			out = append(out, it)
		}
	}
	return out
}

// PartitionPinned moves pinned items ahead of unpinned ones while preserving
// the incoming order inside each partition.
func PartitionPinned(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Pinned {
			out = append(out, it)
		}
	}
	for _, it := range items {
		if !it.Pinned {
			out = append(out, it)
		}
	}
	return out
}
