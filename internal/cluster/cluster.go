// Package cluster groups citations into parallel-citation clusters
// using only document-derived (extracted) fields, before verification
// (spec §4.5). Canonical data is never consulted here.
package cluster

import (
	"github.com/caselaw/casestrainer/internal/citation"
)

// Config holds the clustering thresholds (spec §6.5).
type Config struct {
	NameSimilarityThreshold float64
	YearTolerance           int
	ProximityChars          int
	MaxSpanChars            int
}

// DefaultConfig returns the spec.md §6.5 default clustering thresholds.
func DefaultConfig() Config {
	return Config{
		NameSimilarityThreshold: 0.6,
		YearTolerance:           2,
		ProximityChars:          200,
		MaxSpanChars:            2000,
	}
}

// working is the clusterer's internal representation of an in-progress
// cluster: a set of indices into the caller's citation slice. It never
// escapes this package.
type working struct {
	members []int
}

// Clusterer partitions a document's citations into clusters per spec
// §4.5. It is stateless and safe for concurrent use across distinct
// calls to Cluster.
type Clusterer struct {
	cfg Config
}

// New builds a Clusterer with the given thresholds.
func New(cfg Config) *Clusterer {
	return &Clusterer{cfg: cfg}
}

// Cluster partitions citations (assumed to already be in document
// order) into clusters, sets each citation's ClusterID to its resulting
// cluster's index, and returns the clusters.
func (cl *Clusterer) Cluster(citations []citation.Citation) []citation.Cluster {
	var clusters []working

	for i := range citations {
		c := &citations[i]
		candidates := cl.passingClusters(citations, clusters, c)

		switch len(candidates) {
		case 0:
			clusters = append(clusters, working{members: []int{i}})
		case 1:
			clusters[candidates[0]].members = append(clusters[candidates[0]].members, i)
		default:
			best := cl.bestCandidate(citations, clusters, candidates, c)
			clusters[best].members = append(clusters[best].members, i)
		}
	}

	clusters = cl.splitOversizedClusters(citations, clusters)

	result := make([]citation.Cluster, len(clusters))
	for k, wc := range clusters {
		for _, idx := range wc.members {
			citations[idx].ClusterID = k
		}
		memberText := make([]string, len(wc.members))
		for i, idx := range wc.members {
			memberText[i] = citations[idx].Text
		}
		result[k] = citation.Cluster{
			ID:              k, // stable arena index, not a random id — joins Citation.ClusterID by value
			MemberIndices:   append([]int(nil), wc.members...),
			Citations:       memberText,
			ClusterCaseName: representativeName(citations, wc.members),
			ClusterYear:     representativeYear(citations, wc.members),
		}
	}
	return result
}

func (cl *Clusterer) passingClusters(citations []citation.Citation, clusters []working, c *citation.Citation) []int {
	var candidates []int
	for k, wc := range clusters {
		if cl.shouldMerge(citations, wc, c) {
			candidates = append(candidates, k)
		}
	}
	return candidates
}

func (cl *Clusterer) shouldMerge(citations []citation.Citation, wc working, c *citation.Citation) bool {
	proximity := minDistance(citations, wc, c)
	if proximity > cl.cfg.ProximityChars {
		return false
	}

	repName := representativeName(citations, wc.members)
	if c.ExtractedCaseName != nil && repName != nil {
		if NameSimilarity(*c.ExtractedCaseName, *repName) < cl.cfg.NameSimilarityThreshold {
			return false
		}
	}
	// If either name is null, the name test passes only via the
	// proximity check already performed above (shared-sentence
	// heuristic) — no further action needed here.

	repYear := representativeYear(citations, wc.members)
	if c.ExtractedYear != nil && repYear != nil {
		diff := *c.ExtractedYear - *repYear
		if diff < 0 {
			diff = -diff
		}
		if diff > cl.cfg.YearTolerance {
			return false
		}
	}

	return true
}

func (cl *Clusterer) bestCandidate(citations []citation.Citation, clusters []working, candidates []int, c *citation.Citation) int {
	if c.ExtractedCaseName != nil {
		best, bestScore := candidates[0], -1.0
		for _, k := range candidates {
			repName := representativeName(citations, clusters[k].members)
			if repName == nil {
				continue
			}
			score := NameSimilarity(*c.ExtractedCaseName, *repName)
			if score > bestScore {
				bestScore = score
				best = k
			}
		}
		if bestScore >= 0 {
			return best
		}
	}

	best, bestDist := candidates[0], -1
	for _, k := range candidates {
		d := minDistance(citations, clusters[k], c)
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = k
		}
	}
	return best
}

// minDistance returns the minimum character gap between c and the
// nearest member of wc (0 if their spans touch or overlap).
func minDistance(citations []citation.Citation, wc working, c *citation.Citation) int {
	best := -1
	for _, idx := range wc.members {
		m := &citations[idx]
		d := spanDistance(c.Start, c.End, m.Start, m.End)
		if best < 0 || d < best {
			best = d
		}
	}
	if best < 0 {
		return 0
	}
	return best
}

func spanDistance(aStart, aEnd, bStart, bEnd int) int {
	if aStart >= bEnd {
		return aStart - bEnd
	}
	if bStart >= aEnd {
		return bStart - aEnd
	}
	return 0
}

// representativeName returns the extracted_case_name occurring most
// frequently among members, or nil if every member's is null.
func representativeName(citations []citation.Citation, members []int) *string {
	counts := make(map[string]int)
	order := make(map[string]int)
	for i, idx := range members {
		name := citations[idx].ExtractedCaseName
		if name == nil {
			continue
		}
		if _, ok := order[*name]; !ok {
			order[*name] = i
		}
		counts[*name]++
	}
	return mostFrequent(counts, order)
}

// representativeYear returns the extracted_year occurring most
// frequently among members, or nil if every member's is null.
func representativeYear(citations []citation.Citation, members []int) *int {
	counts := make(map[int]int)
	order := make(map[int]int)
	for i, idx := range members {
		year := citations[idx].ExtractedYear
		if year == nil {
			continue
		}
		if _, ok := order[*year]; !ok {
			order[*year] = i
		}
		counts[*year]++
	}
	return mostFrequentYear(counts, order)
}

func mostFrequent(counts map[string]int, order map[string]int) *string {
	if len(counts) == 0 {
		return nil
	}
	var best string
	bestCount, bestOrder := -1, -1
	for v, n := range counts {
		if n > bestCount || (n == bestCount && order[v] < bestOrder) {
			best, bestCount, bestOrder = v, n, order[v]
		}
	}
	return &best
}

func mostFrequentYear(counts map[int]int, order map[int]int) *int {
	if len(counts) == 0 {
		return nil
	}
	var best int
	bestCount, bestOrder := -1, -1
	for v, n := range counts {
		if n > bestCount || (n == bestCount && order[v] < bestOrder) {
			best, bestCount, bestOrder = v, n, order[v]
		}
	}
	return &best
}
