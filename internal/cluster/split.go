package cluster

import (
	"sort"

	"github.com/caselaw/casestrainer/internal/citation"
)

// splitOversizedClusters enforces the spec §4.5 step-2 constraint: no
// cluster may span (max end - min start) more than cfg.MaxSpanChars. A
// cluster exceeding the bound is split by agglomerative grouping on
// proximity — members sorted by position, merged into the running
// sub-cluster while doing so keeps its span within bound, and broken
// into a new sub-cluster otherwise.
func (cl *Clusterer) splitOversizedClusters(citations []citation.Citation, clusters []working) []working {
	var out []working
	for _, wc := range clusters {
		out = append(out, cl.splitOne(citations, wc)...)
	}
	return out
}

func (cl *Clusterer) splitOne(citations []citation.Citation, wc working) []working {
	if clusterSpan(citations, wc.members) <= cl.cfg.MaxSpanChars {
		return []working{wc}
	}

	members := append([]int(nil), wc.members...)
	sort.Slice(members, func(i, j int) bool { return citations[members[i]].Start < citations[members[j]].Start })

	var result []working
	current := []int{members[0]}
	minStart := citations[members[0]].Start
	maxEnd := citations[members[0]].End

	for _, idx := range members[1:] {
		c := &citations[idx]
		newMin, newMax := minStart, maxEnd
		if c.Start < newMin {
			newMin = c.Start
		}
		if c.End > newMax {
			newMax = c.End
		}
		if newMax-newMin <= cl.cfg.MaxSpanChars {
			current = append(current, idx)
			minStart, maxEnd = newMin, newMax
			continue
		}
		result = append(result, working{members: current})
		current = []int{idx}
		minStart, maxEnd = c.Start, c.End
	}
	result = append(result, working{members: current})
	return result
}

func clusterSpan(citations []citation.Citation, members []int) int {
	if len(members) == 0 {
		return 0
	}
	minStart, maxEnd := citations[members[0]].Start, citations[members[0]].End
	for _, idx := range members[1:] {
		c := &citations[idx]
		if c.Start < minStart {
			minStart = c.Start
		}
		if c.End > maxEnd {
			maxEnd = c.End
		}
	}
	return maxEnd - minStart
}
