package war

import (
	"time"

	"warplan/internal/milp"
)

type Attacker struct {
	Name             string `json:"name" yaml:"name"`
	Rank             int    `json:"rank" yaml:"rank"`
	Power            int    `json:"power" yaml:"power"`
	AttacksRemaining int    `json:"attacks_remaining" yaml:"attacks_remaining"`
}

type Target struct {
	Name     string `json:"name" yaml:"name"`
	Rank     int    `json:"rank" yaml:"rank"`
	Power    int    `json:"power" yaml:"power"`
	Captured int    `json:"captured" yaml:"captured"`
}

// PastAttack records that an attacker already struck the target at
// TargetRank at some point during the event.
type PastAttack struct {
	AttackerName string `json:"attacker" yaml:"attacker"`
	TargetRank   int    `json:"target_rank" yaml:"target_rank"`
}

// Slot is one remaining attack of an attacker. Slots live for a single
// planning call.
type Slot struct {
	ID         int
	OwnerName  string
	OwnerRank  int
	OwnerIndex int
	OwnerPower int
}

type PlanRow struct {
	AttackerName     string `json:"attacker"`
	AttackerRank     int    `json:"rank"`
	FirstTargetRank  *int   `json:"first_target"`
	SecondTargetRank *int   `json:"second_target"`
}

type Request struct {
	ID        string       `json:"id,omitempty" yaml:"id"`
	Attackers []Attacker   `json:"attackers" yaml:"attackers"`
	Targets   []Target     `json:"targets" yaml:"targets"`
	History   []PastAttack `json:"history,omitempty" yaml:"history"`
}

type Outcome string

const (
	OutcomeOptimal    Outcome = "optimal"
	OutcomeFeasible   Outcome = "feasible"
	OutcomeFallback   Outcome = "fallback"
	OutcomeInfeasible Outcome = "infeasible"
	OutcomeEmpty      Outcome = "empty"
)

type Result struct {
	RequestID    string        `json:"request_id"`
	Outcome      Outcome       `json:"outcome"`
	SolverStatus milp.Status   `json:"solver_status,omitempty"`
	Objective    float64       `json:"objective"`
	Nodes        int           `json:"nodes"`
	Elapsed      time.Duration `json:"elapsed_ns"`
	Rows         []PlanRow     `json:"rows"`
	Events       []Event       `json:"events,omitempty"`
}

// Degraded reports whether the rows are anything less than a proven
// optimal plan.
func (r Result) Degraded() bool {
	return r.Outcome != OutcomeOptimal && r.Outcome != OutcomeEmpty
}

type Event struct {
	T       float64        `json:"t"`
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

const (
	EventSlotsExpanded = "SlotsExpanded"
	EventModelBuilt    = "ModelBuilt"
	EventIncumbent     = "Incumbent"
	EventSolveFinished = "SolveFinished"
	EventFallbackUsed  = "FallbackUsed"
	EventExtracted     = "Extracted"
)
