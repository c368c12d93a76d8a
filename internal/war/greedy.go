package war

type choice struct {
	target int
	gain   float64
	reward float64
	dist   int
	rank   int
}

// beats ranks candidates by capped gain, then by a non-negative expected
// reward, then by rank distance, then by the stronger target.
func (c choice) beats(o choice) bool {
	if c.gain != o.gain {
		return c.gain > o.gain
	}
	if (c.reward >= 0) != (o.reward >= 0) {
		return c.reward >= 0
	}
	if c.dist != o.dist {
		return c.dist < o.dist
	}
	return c.rank < o.rank
}

// greedy assigns slots attacker by attacker, strongest first. A target is
// legal for a slot when it is not in the owner's history and the owner has
// not taken it already in this plan. Slots with no legal target stay
// unassigned (-1).
func (in *instance) greedy() []int {
	assign := make([]int, len(in.slots))
	for s := range assign {
		assign[s] = -1
	}
	remaining := append([]float64(nil), in.caps...)
	owned := in.slotsOf()

	for _, a := range in.rankOrder() {
		rank := in.attackers[a].Rank
		taken := make([]bool, len(in.targets))
		for _, s := range owned[a] {
			best := choice{target: -1}
			for t, tg := range in.targets {
				if in.banned[s][t] || taken[t] {
					continue
				}
				c := choice{
					target: t,
					gain:   min(remaining[t], max(in.reward[s][t], 0)),
					reward: in.reward[s][t],
					dist:   abs(tg.Rank - rank),
					rank:   tg.Rank,
				}
				if best.target < 0 || c.beats(best) {
					best = c
				}
			}
			if best.target < 0 {
				continue
			}
			assign[s] = best.target
			taken[best.target] = true
			remaining[best.target] -= best.gain
		}
	}
	return assign
}
