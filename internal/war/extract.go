package war

import "sort"

// rows turns a slot assignment (target ordinal per slot, -1 for none) into
// one row per attacker sorted by rank. Each attacker's targets are ordered
// by rank distance from the attacker, nearest first; targets past the
// second are dropped.
func (in *instance) rows(assign []int) []PlanRow {
	picked := make([][]int, len(in.attackers))
	for s, t := range assign {
		if t < 0 {
			continue
		}
		owner := in.slots[s].OwnerIndex
		picked[owner] = append(picked[owner], in.targets[t].Rank)
	}

	out := make([]PlanRow, 0, len(in.attackers))
	for i, a := range in.attackers {
		row := PlanRow{AttackerName: a.Name, AttackerRank: a.Rank}
		ranks := picked[i]
		sort.SliceStable(ranks, func(x, y int) bool {
			return abs(ranks[x]-a.Rank) < abs(ranks[y]-a.Rank)
		})
		if len(ranks) > 0 {
			row.FirstTargetRank = intPtr(ranks[0])
		}
		if len(ranks) > 1 {
			row.SecondTargetRank = intPtr(ranks[1])
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AttackerRank < out[j].AttackerRank })
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func intPtr(v int) *int { return &v }
