// Package accountability reduces a set of event owners to a responsibility
// distribution. It is a deterministic counting heuristic, not a model.
package accountability

import "github.com/roach88/shiptrace/internal/ir"

// Entry is one owner's share of the attributed events.
type Entry struct {
	ContributionPct float64 `json:"contribution_pct"`
	EventCount      int     `json:"event_count"`
}

// Distribution maps owner name to its entry.
type Distribution map[string]Entry

// Estimate counts events per owner and converts counts to percentages
// rounded to one decimal place.
//
// The result depends only on the multiset of owners, not their order.
// No owners yields an empty (non-nil) distribution. Owner names are used
// as given.
func Estimate(owners []string) Distribution {
	counts := make(map[string]int)
	for _, o := range owners {
		counts[o]++
	}

	dist := make(Distribution, len(counts))
	total := len(owners)
	if total == 0 {
		return dist
	}
	for owner, n := range counts {
		dist[owner] = Entry{
			ContributionPct: ir.Round(float64(n)/float64(total)*100, 1),
			EventCount:      n,
		}
	}
	return dist
}

// Total returns the summed percentage, which is 100 within rounding.
func (d Distribution) Total() float64 {
	var sum float64
	for _, e := range d {
		sum += e.ContributionPct
	}
	return sum
}
