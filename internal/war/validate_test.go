package war

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	base := func() Request {
		return Request{
			Attackers: []Attacker{
				{Name: "alpha", Rank: 1, Power: 16, AttacksRemaining: 2},
				{Name: "bravo", Rank: 2, Power: 15, AttacksRemaining: 1},
			},
			Targets: []Target{
				{Name: "one", Rank: 1, Power: 16},
				{Name: "two", Rank: 2, Power: 15, Captured: 3},
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Request)
		field  string
	}{
		{name: "valid", mutate: func(*Request) {}},
		{name: "duplicate attacker rank", mutate: func(r *Request) { r.Attackers[1].Rank = 1 }, field: "attackers[1]"},
		{name: "duplicate attacker name", mutate: func(r *Request) { r.Attackers[1].Name = "alpha" }, field: "attackers[1]"},
		{name: "empty attacker name", mutate: func(r *Request) { r.Attackers[0].Name = "" }, field: "attackers[0]"},
		{name: "zero attacker rank", mutate: func(r *Request) { r.Attackers[0].Rank = 0 }, field: "attackers[0]"},
		{name: "negative attacks", mutate: func(r *Request) { r.Attackers[1].AttacksRemaining = -1 }, field: "attackers[1]"},
		{name: "duplicate target rank", mutate: func(r *Request) { r.Targets[1].Rank = 1 }, field: "targets[1]"},
		{name: "negative target rank", mutate: func(r *Request) { r.Targets[0].Rank = -4 }, field: "targets[0]"},
		{name: "negative captured", mutate: func(r *Request) { r.Targets[0].Captured = -1 }, field: "targets[0]"},
		{name: "unknown history is fine", mutate: func(r *Request) {
			r.History = []PastAttack{{AttackerName: "ghost", TargetRank: 40}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base()
			tt.mutate(&req)
			err := req.Validate()
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRequest))
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
