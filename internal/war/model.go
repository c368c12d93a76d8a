package war

import (
	"sort"

	"warplan/internal/milp"
)

// instance is the planning input after slot expansion: everything the
// model builder and the greedy fallback share.
type instance struct {
	attackers []Attacker
	targets   []Target
	slots     []Slot
	caps      []float64
	reward    [][]float64 // [slot][target] expected reward
	banned    [][]bool    // [slot][target] struck before, per history
}

func newInstance(req Request, params ScoreParams) *instance {
	struck := make(map[string]map[int]bool)
	for _, h := range req.History {
		if struck[h.AttackerName] == nil {
			struck[h.AttackerName] = map[int]bool{}
		}
		struck[h.AttackerName][h.TargetRank] = true
	}

	in := &instance{
		attackers: req.Attackers,
		targets:   req.Targets,
		slots:     ExpandSlots(req.Attackers),
		caps:      make([]float64, len(req.Targets)),
	}
	for t, tg := range in.targets {
		in.caps[t] = capacity(tg)
	}
	in.reward = make([][]float64, len(in.slots))
	in.banned = make([][]bool, len(in.slots))
	for s, sl := range in.slots {
		in.reward[s] = make([]float64, len(in.targets))
		in.banned[s] = make([]bool, len(in.targets))
		for t, tg := range in.targets {
			in.banned[s][t] = struck[sl.OwnerName][tg.Rank]
			if in.caps[t] <= 0 || in.banned[s][t] {
				continue
			}
			in.reward[s][t] = params.ExpectedReward(sl.OwnerRank, tg.Rank, sl.OwnerPower, tg.Power)
		}
	}
	return in
}

// slotsOf groups slot indices by attacker index.
func (in *instance) slotsOf() [][]int {
	owned := make([][]int, len(in.attackers))
	for s, sl := range in.slots {
		owned[sl.OwnerIndex] = append(owned[sl.OwnerIndex], s)
	}
	return owned
}

// rankOrder returns the indices of attackers with attacks left, strongest
// first.
func (in *instance) rankOrder() []int {
	var order []int
	for i, a := range in.attackers {
		if a.AttacksRemaining > 0 {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return in.attackers[order[i]].Rank < in.attackers[order[j]].Rank
	})
	return order
}

// assignmentModel indexes the MILP variables by slot, attacker and target
// ordinal. Entries of y for attackers without attacks are nil.
type assignmentModel struct {
	*milp.Model
	x [][]int
	y [][]int
	z []int

	rows map[string]int // constraint rows per family, for diagnostics
}

func (in *instance) buildModel(lambda float64) *assignmentModel {
	m := &assignmentModel{
		Model: milp.NewModel(milp.Maximize),
		x:     make([][]int, len(in.slots)),
		y:     make([][]int, len(in.attackers)),
		z:     make([]int, len(in.targets)),
		rows:  map[string]int{},
	}

	for t := range in.targets {
		m.z[t] = m.AddContinuous("z", 0, in.caps[t], 1)
	}
	for s := range in.slots {
		m.x[s] = make([]int, len(in.targets))
		for t := range in.targets {
			m.x[s][t] = m.AddBinary("x", -lambda)
		}
	}
	for a, at := range in.attackers {
		if at.AttacksRemaining == 0 {
			continue
		}
		m.y[a] = make([]int, len(in.targets))
		for t := range in.targets {
			m.y[a][t] = m.AddBinary("y", 0)
		}
	}

	// every slot lands on exactly one target
	for s := range in.slots {
		terms := make([]milp.Term, 0, len(in.targets))
		for t := range in.targets {
			terms = append(terms, milp.Term{Var: m.x[s][t], Coef: 1})
		}
		m.add("assign", milp.EQ, 1, terms...)
	}

	// captured reward is bounded by the cap and by the expected reward sent
	for t := range in.targets {
		m.add("cap", milp.LE, in.caps[t], milp.Term{Var: m.z[t], Coef: 1})
		terms := []milp.Term{{Var: m.z[t], Coef: 1}}
		for s := range in.slots {
			if e := in.reward[s][t]; e != 0 {
				terms = append(terms, milp.Term{Var: m.x[s][t], Coef: -e})
			}
		}
		m.add("reward", milp.LE, 0, terms...)
	}

	owned := in.slotsOf()
	for a, slots := range owned {
		if m.y[a] == nil {
			continue
		}
		for t := range in.targets {
			for _, s := range slots {
				m.add("link", milp.GE, 0,
					milp.Term{Var: m.y[a][t], Coef: 1},
					milp.Term{Var: m.x[s][t], Coef: -1})
			}
			terms := make([]milp.Term, 0, len(slots))
			for _, s := range slots {
				terms = append(terms, milp.Term{Var: m.x[s][t], Coef: 1})
			}
			m.add("no_double", milp.LE, 1, terms...)
		}
	}

	// prefix dominance between neighbours in rank order, one row per threshold
	thresholds := distinctRanks(in.targets)
	order := in.rankOrder()
	for k := 0; k+1 < len(order); k++ {
		strong, weak := order[k], order[k+1]
		for _, r := range thresholds {
			var terms []milp.Term
			for t, tg := range in.targets {
				if tg.Rank <= r {
					terms = append(terms,
						milp.Term{Var: m.y[strong][t], Coef: 1},
						milp.Term{Var: m.y[weak][t], Coef: -1})
				}
			}
			if len(terms) > 0 {
				m.add("prefix", milp.GE, 0, terms...)
			}
		}
	}

	for s := range in.slots {
		for t := range in.targets {
			if in.banned[s][t] {
				m.Fix(m.x[s][t], 0)
				m.rows["history"]++
			}
		}
	}
	return m
}

func (m *assignmentModel) add(family string, op milp.Op, rhs float64, terms ...milp.Term) {
	m.AddConstraint(op, rhs, terms...)
	m.rows[family]++
}

// assignment reads the chosen target of every slot from solved values, -1
// when none clears one half. Ties go to the larger value, then to the
// earlier target.
func (m *assignmentModel) assignment(values []float64) []int {
	out := make([]int, len(m.x))
	for s := range m.x {
		out[s] = -1
		if values == nil {
			continue
		}
		best := 0.5
		for t, v := range m.x[s] {
			if val := values[v]; val > best {
				best = val
				out[s] = t
			}
		}
	}
	return out
}

// warmStart turns a slot assignment into a full variable vector: every y is
// raised to one, which satisfies linking and prefix dominance for any x,
// and z takes the reward the assignment sends, capped. It returns nil when
// a slot is unassigned.
func (in *instance) warmStart(m *assignmentModel, assign []int) []float64 {
	values := make([]float64, m.NumVars())
	sent := make([]float64, len(in.targets))
	for s, t := range assign {
		if t < 0 {
			return nil
		}
		values[m.x[s][t]] = 1
		sent[t] += in.reward[s][t]
	}
	for a := range m.y {
		for _, v := range m.y[a] {
			values[v] = 1
		}
	}
	for t := range in.targets {
		values[m.z[t]] = min(max(sent[t], 0), in.caps[t])
	}
	return values
}

func distinctRanks(targets []Target) []int {
	seen := map[int]bool{}
	var ranks []int
	for _, t := range targets {
		if !seen[t.Rank] {
			seen[t.Rank] = true
			ranks = append(ranks, t.Rank)
		}
	}
	sort.Ints(ranks)
	return ranks
}
