// Package meals, the aggregation fold. Aggregate is a pure function from raw
// storage rows to the client-facing plan structure; it never touches storage
// and never mutates its input, so calling it twice over the same rows yields
// identical results.
package meals

import "sort"

// Aggregate folds unordered assignment rows into an ordered PlanResult:
//
//  1. rows are grouped by calendar date, preserving the first-seen order of
//     dates while grouping;
//  2. within each date, entries are ordered by slot ordinal ascending with a
//     stable sort, so entries sharing an ordinal keep their relative storage
//     order;
//  3. the day plans are returned in ascending date order regardless of the
//     order storage produced them in.
//
// An empty input yields an empty (non-nil) result, and rows with a missing
// slot code sort first within their day; aggregation is total over any
// well-typed input.
func Aggregate(rows []RawMealAssignment) PlanResult {
	result := PlanResult{}
	if len(rows) == 0 {
		return result
	}

	groups := make(map[string][]RawMealAssignment)
	keys := make([]string, 0)
	for _, row := range rows {
		key := row.Date.Format(dateKeyLayout)
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		// Appending builds fresh per-day slices; the caller's slice is never
		// reordered or aliased.
		groups[key] = append(groups[key], row)
	}

	// The date key layout sorts lexicographically in chronological order.
	sort.Strings(keys)

	for _, key := range keys {
		entries := groups[key]
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].slotOrdinal() < entries[j].slotOrdinal()
		})
		result = append(result, DayPlan{
			Date:          key,
			RecipesOfUser: entries,
		})
	}

	return result
}
