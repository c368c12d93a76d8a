package war

import (
	"fmt"
	"math/rand"
	"sort"

	"warplan/internal/util"
)

const attacksPerMember = 2

// Generate draws a valid random request: power 10..16 descending with
// rank, 0..2 attacks left, 0..3 already captured, and one history entry
// per attack already spent.
func Generate(r *rand.Rand, attackers, targets int) Request {
	var req Request
	for i, p := range powers(r, attackers) {
		a := Attacker{
			Name:             fmt.Sprintf("attacker-%02d", i+1),
			Rank:             i + 1,
			Power:            p,
			AttacksRemaining: util.Between(r, 0, attacksPerMember),
		}
		req.Attackers = append(req.Attackers, a)
		for _, t := range util.Pick(r, targets, attacksPerMember-a.AttacksRemaining) {
			req.History = append(req.History, PastAttack{AttackerName: a.Name, TargetRank: t + 1})
		}
	}
	for i, p := range powers(r, targets) {
		req.Targets = append(req.Targets, Target{
			Name:     fmt.Sprintf("target-%02d", i+1),
			Rank:     i + 1,
			Power:    p,
			Captured: util.Between(r, 0, MaxReward),
		})
	}
	return req
}

func powers(r *rand.Rand, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = util.Between(r, 10, 16)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}
