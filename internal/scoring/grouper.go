package scoring

import (
	"sort"

	"golang.org/x/sync/errgroup"
)

const reasonMissingScopeID = "missing scope attribute"

// Groups holds the scored population partitioned by each scope type.
// The two partitions are independent: the same student appears in one
// school group and one district group.
type Groups struct {
	Schools    map[string][]ScoredStudent
	Districts  map[string][]ScoredStudent
	Exclusions []ScopeExclusion
}

// GroupByScope partitions the population. A student with a missing scope
// attribute is excluded from that scope only and the exclusion is recorded
// so callers can report partial data.
func GroupByScope(population []ScoredStudent) Groups {
	g := Groups{
		Schools:   make(map[string][]ScoredStudent),
		Districts: make(map[string][]ScoredStudent),
	}

	for _, s := range population {
		if s.SchoolID != "" {
			g.Schools[s.SchoolID] = append(g.Schools[s.SchoolID], s)
		} else {
			g.Exclusions = append(g.Exclusions, ScopeExclusion{
				StudentID: s.ID,
				Scope:     ScopeSchool,
				Reason:    reasonMissingScopeID,
			})
		}

		if s.DistrictID != "" {
			g.Districts[s.DistrictID] = append(g.Districts[s.DistrictID], s)
		} else {
			g.Exclusions = append(g.Exclusions, ScopeExclusion{
				StudentID: s.ID,
				Scope:     ScopeDistrict,
				Reason:    reasonMissingScopeID,
			})
		}
	}

	return g
}

// RankGroups ranks every partition of one scope type. Partitions are
// disjoint, so they are ranked in parallel with one result slot per scope;
// the slots are merged only after all workers finish.
func RankGroups(groups map[string][]ScoredStudent) map[string]*RankedList {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	results := make([]*RankedList, len(keys))

	var g errgroup.Group
	for i, key := range keys {
		g.Go(func() error {
			results[i] = Rank(groups[key])
			return nil
		})
	}
	// Ranking is pure and never fails; Wait only joins the workers.
	_ = g.Wait()

	merged := make(map[string]*RankedList, len(keys))
	for i, key := range keys {
		merged[key] = results[i]
	}
	return merged
}
