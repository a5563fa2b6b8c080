package result

import (
	"math"
	"sort"

	"github.com/mkleiven/stoltzen-results/internal/timing"
)

// Sort orders participants for output: groups in their fixed order
// (Dame, Mann, Pluss), then ascending finishing time within each
// group. Times that cannot be converted to seconds sort last within
// their group. Name breaks remaining ties so output is deterministic.
func Sort(participants []*Participant) {
	sort.SliceStable(participants, func(i, j int) bool {
		a, b := participants[i], participants[j]
		if groupOrder[a.Gruppe] != groupOrder[b.Gruppe] {
			return groupOrder[a.Gruppe] < groupOrder[b.Gruppe]
		}
		sa, sb := sortSeconds(a), sortSeconds(b)
		if sa != sb {
			return sa < sb
		}
		return a.Navn < b.Navn
	})
}

// ByGroup splits participants into per-group slices, preserving their
// relative order.
func ByGroup(participants []*Participant) map[Group][]*Participant {
	grouped := make(map[Group][]*Participant, len(Groups))
	for _, g := range Groups {
		grouped[g] = []*Participant{}
	}
	for _, p := range participants {
		grouped[p.Gruppe] = append(grouped[p.Gruppe], p)
	}
	return grouped
}

// sortSeconds is the participant's sort key: total seconds, or MaxInt
// for absent/incomparable times so they sink to the bottom.
func sortSeconds(p *Participant) int {
	if p.Tid == "" {
		return math.MaxInt
	}
	seconds, err := timing.ToSeconds(p.Tid)
	if err != nil {
		return math.MaxInt
	}
	return seconds
}
