package war

// MaxReward is the reward a target yields when fully captured.
const MaxReward = 3

// ScoreParams are the coefficients of the linear success heuristic. Power
// level dominates; rank is a weak secondary signal.
type ScoreParams struct {
	Base         float64
	PowerPenalty float64 // per power level the target is above the attacker
	PowerBonus   float64 // per power level the target is below the attacker
	RankWeight   float64 // per rank the target sits below the attacker
	// Clamp bounds the score to [0, 1]. Off by default.
	Clamp bool
}

func DefaultScoreParams() ScoreParams {
	return ScoreParams{
		Base:         0.60,
		PowerPenalty: 0.50,
		PowerBonus:   0.10,
		RankWeight:   0.04,
	}
}

func (p ScoreParams) Score(attackerRank, targetRank, attackerPower, targetPower int) float64 {
	base := p.Base
	if dPow := targetPower - attackerPower; dPow > 0 {
		base -= p.PowerPenalty * float64(dPow)
	} else if dPow < 0 {
		base += p.PowerBonus * float64(-dPow)
	}
	base += p.RankWeight * float64(targetRank-attackerRank)
	if p.Clamp {
		base = min(max(base, 0), 1)
	}
	return base
}

func (p ScoreParams) ExpectedReward(attackerRank, targetRank, attackerPower, targetPower int) float64 {
	return MaxReward * p.Score(attackerRank, targetRank, attackerPower, targetPower)
}

// capacity is the reward still obtainable on t.
func capacity(t Target) float64 {
	return float64(max(0, MaxReward-t.Captured))
}
