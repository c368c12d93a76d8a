package war

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"warplan/internal/milp"
)

type Fallback string

const (
	FallbackGreedy Fallback = "greedy"
	FallbackNone   Fallback = "none"
)

type Config struct {
	// Lambda weighs the per-attack tie-break penalty in the objective.
	Lambda       float64
	SolveTimeout time.Duration
	MaxNodes     int
	// MaxVariables skips the solver for larger models; <= 0 disables the guard.
	MaxVariables int
	Fallback     Fallback
	// Record keeps planning events on the Result.
	Record  bool
	Scoring ScoreParams
}

func DefaultConfig() Config {
	return Config{
		Lambda:       1e-4,
		SolveTimeout: 10 * time.Second,
		MaxNodes:     20000,
		MaxVariables: 1500,
		Fallback:     FallbackGreedy,
		Scoring:      DefaultScoreParams(),
	}
}

// Planner turns roster snapshots into attack plans. It keeps no state
// between calls and is safe for concurrent use.
type Planner struct {
	cfg      Config
	solver   milp.Solver
	logger   *zap.Logger
	tracer   trace.Tracer
	recorder func(Event)
}

type Option func(*Planner)

func WithSolver(s milp.Solver) Option    { return func(p *Planner) { p.solver = s } }
func WithLogger(l *zap.Logger) Option    { return func(p *Planner) { p.logger = l } }
func WithTracer(t trace.Tracer) Option   { return func(p *Planner) { p.tracer = t } }
func WithRecorder(fn func(Event)) Option { return func(p *Planner) { p.recorder = fn } }

func NewPlanner(cfg Config, opts ...Option) *Planner {
	p := &Planner{
		cfg:    cfg,
		solver: milp.BranchAndBound{},
		logger: zap.NewNop(),
		tracer: otel.Tracer("warplan/internal/war"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Planner) Config() Config { return p.cfg }

// Plan computes the attack plan for one snapshot.
//
// Invalid rosters fail with an error wrapping ErrInvalidRequest. A solver
// that cannot prove a plan is not an error: the Result carries the solver
// status and, depending on the fallback, the greedy plan or null rows.
// Only cancellation of ctx by the caller aborts planning.
func (p *Planner) Plan(ctx context.Context, req Request) (res Result, err error) {
	started := time.Now()
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	ctx, span := p.tracer.Start(ctx, "war.Plan", trace.WithAttributes(
		attribute.String("war.request_id", req.ID),
		attribute.Int("war.attackers", len(req.Attackers)),
		attribute.Int("war.targets", len(req.Targets)),
		attribute.Int("war.history", len(req.History)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(
				attribute.String("war.outcome", string(res.Outcome)),
				attribute.String("war.solver_status", string(res.SolverStatus)),
				attribute.Int("war.nodes", res.Nodes),
			)
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}()

	log := p.logger.With(zap.String("request_id", req.ID))
	if verr := req.Validate(); verr != nil {
		log.Warn("rejecting planning request", zap.Error(verr))
		return Result{}, verr
	}

	res = Result{RequestID: req.ID}
	emit := func(typ string, payload map[string]any) {
		ev := Event{T: time.Since(started).Seconds(), Type: typ, Payload: payload}
		if p.cfg.Record {
			res.Events = append(res.Events, ev)
		}
		if p.recorder != nil {
			p.recorder(ev)
		}
	}
	defer func() { res.Elapsed = time.Since(started) }()

	if len(req.Attackers) == 0 || len(req.Targets) == 0 {
		log.Debug("empty roster, nothing to plan",
			zap.Int("attackers", len(req.Attackers)), zap.Int("targets", len(req.Targets)))
		res.Outcome = OutcomeEmpty
		res.Rows = []PlanRow{}
		return res, nil
	}

	in := newInstance(req, p.cfg.Scoring)
	emit(EventSlotsExpanded, map[string]any{"slots": len(in.slots)})
	if len(in.slots) == 0 {
		log.Debug("no attacks remaining")
		res.Outcome = OutcomeEmpty
		res.Rows = in.rows(nil)
		return res, nil
	}

	greedy := in.greedy()
	m := in.buildModel(p.cfg.Lambda)
	built := map[string]any{"vars": m.NumVars(), "constraints": m.NumConstraints()}
	for family, n := range m.rows {
		built[family] = n
	}
	emit(EventModelBuilt, built)
	log.Debug("assignment model built",
		zap.Int("slots", len(in.slots)),
		zap.Int("vars", m.NumVars()),
		zap.Int("constraints", m.NumConstraints()))

	if p.cfg.MaxVariables > 0 && m.NumVars() > p.cfg.MaxVariables {
		log.Warn("assignment model exceeds solver budget",
			zap.Int("vars", m.NumVars()), zap.Int("max_vars", p.cfg.MaxVariables))
		res.SolverStatus = milp.StatusNotSolved
		p.degrade(&res, in, greedy, emit, log)
		return res, nil
	}

	sol, serr := p.solver.Solve(ctx, m.Model, milp.Options{
		MaxNodes: p.cfg.MaxNodes,
		Timeout:  p.cfg.SolveTimeout,
		Start:    in.warmStart(m, greedy),
		OnIncumbent: func(inc milp.Incumbent) {
			emit(EventIncumbent, map[string]any{
				"objective": inc.Objective, "node": inc.Node, "from_start": inc.FromStart,
			})
		},
	})
	if serr != nil {
		if ctx.Err() != nil {
			return Result{}, fmt.Errorf("war: plan %s: %w", req.ID, serr)
		}
		return Result{}, fmt.Errorf("war: plan %s: solve: %w", req.ID, serr)
	}

	res.SolverStatus = sol.Status
	res.Nodes = sol.Nodes
	finished := map[string]any{
		"status":     string(sol.Status),
		"objective":  sol.Objective,
		"nodes":      sol.Nodes,
		"pivots":     sol.Pivots,
		"failed":     sol.Failed,
		"elapsed_ms": sol.Elapsed.Milliseconds(),
	}
	if sol.FirstFailure != nil {
		finished["first_failure"] = sol.FirstFailure.Error()
		log.Debug("relaxations failed during search",
			zap.Int("failed", sol.Failed), zap.NamedError("first_failure", sol.FirstFailure))
	}
	emit(EventSolveFinished, finished)

	switch sol.Status {
	case milp.StatusOptimal, milp.StatusFeasible:
		res.Outcome = OutcomeOptimal
		if sol.Status == milp.StatusFeasible {
			res.Outcome = OutcomeFeasible
			log.Warn("solver stopped without proving optimality",
				zap.Int("nodes", sol.Nodes), zap.Duration("elapsed", sol.Elapsed))
		}
		res.Objective = sol.Objective
		res.Rows = in.rows(m.assignment(sol.Values))
	default:
		log.Warn("solver returned no plan",
			zap.String("status", string(sol.Status)), zap.Int("nodes", sol.Nodes))
		p.degrade(&res, in, greedy, emit, log)
	}
	emit(EventExtracted, map[string]any{"rows": len(res.Rows)})

	log.Info("plan ready",
		zap.String("outcome", string(res.Outcome)),
		zap.String("solver_status", string(res.SolverStatus)),
		zap.Float64("objective", res.Objective),
		zap.Int("nodes", res.Nodes),
		zap.Duration("elapsed", time.Since(started)))
	return res, nil
}

// degrade fills res when the solver has nothing to offer.
func (p *Planner) degrade(res *Result, in *instance, greedy []int, emit func(string, map[string]any), log *zap.Logger) {
	if p.cfg.Fallback == FallbackNone {
		res.Outcome = OutcomeInfeasible
		res.Rows = in.rows(nil)
		return
	}
	assigned := 0
	for _, t := range greedy {
		if t >= 0 {
			assigned++
		}
	}
	res.Outcome = OutcomeFallback
	res.Objective = in.value(greedy, p.cfg.Lambda)
	res.Rows = in.rows(greedy)
	emit(EventFallbackUsed, map[string]any{"assigned": assigned, "slots": len(in.slots)})
	log.Warn("using greedy fallback plan",
		zap.Int("assigned", assigned), zap.Int("slots", len(in.slots)))
}

// value scores an assignment with the model objective: capped reward per
// target minus the per-attack tie-break.
func (in *instance) value(assign []int, lambda float64) float64 {
	sent := make([]float64, len(in.targets))
	total := 0.0
	for s, t := range assign {
		if t < 0 {
			continue
		}
		sent[t] += in.reward[s][t]
		total -= lambda
	}
	for t := range in.targets {
		total += min(max(sent[t], 0), in.caps[t])
	}
	return total
}
