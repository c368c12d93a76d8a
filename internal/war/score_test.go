package war

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	params := DefaultScoreParams()
	tests := []struct {
		name                       string
		attackerRank, targetRank   int
		attackerPower, targetPower int
		want                       float64
	}{
		{name: "mirror", attackerRank: 3, targetRank: 3, attackerPower: 14, targetPower: 14, want: 0.60},
		{name: "one power up", attackerRank: 3, targetRank: 3, attackerPower: 14, targetPower: 15, want: 0.10},
		{name: "two power up", attackerRank: 3, targetRank: 3, attackerPower: 14, targetPower: 16, want: -0.40},
		{name: "two power down", attackerRank: 3, targetRank: 3, attackerPower: 16, targetPower: 14, want: 0.80},
		{name: "five ranks down", attackerRank: 1, targetRank: 6, attackerPower: 15, targetPower: 15, want: 0.80},
		{name: "two ranks up", attackerRank: 5, targetRank: 3, attackerPower: 15, targetPower: 15, want: 0.52},
		{name: "combined", attackerRank: 2, targetRank: 10, attackerPower: 16, targetPower: 13, want: 1.22},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := params.Score(tt.attackerRank, tt.targetRank, tt.attackerPower, tt.targetPower)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.InDelta(t, 3*tt.want,
				params.ExpectedReward(tt.attackerRank, tt.targetRank, tt.attackerPower, tt.targetPower), 1e-9)
		})
	}
}

func TestScoreClamp(t *testing.T) {
	params := DefaultScoreParams()
	assert.Less(t, params.Score(1, 1, 10, 16), 0.0, "unclamped by default")
	assert.Greater(t, params.Score(1, 30, 16, 10), 1.0, "unclamped by default")

	params.Clamp = true
	assert.Equal(t, 0.0, params.Score(1, 1, 10, 16))
	assert.Equal(t, 1.0, params.Score(1, 30, 16, 10))
	assert.InDelta(t, 0.6, params.Score(4, 4, 12, 12), 1e-9)
}

func TestCapacity(t *testing.T) {
	assert.Equal(t, 3.0, capacity(Target{Captured: 0}))
	assert.Equal(t, 1.0, capacity(Target{Captured: 2}))
	assert.Equal(t, 0.0, capacity(Target{Captured: 3}))
	assert.Equal(t, 0.0, capacity(Target{Captured: 5}))
}
