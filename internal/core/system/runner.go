package system

import (
	"time"

	"go.uber.org/zap"
)

// Runner executes tick systems phase by phase. Systems sharing a phase run in
// registration order. A tick whose systems take longer than dt is logged as an
// overrun.
type Runner struct {
	phases   [len(phaseNames)][]System
	n        int
	ticks    uint64
	overruns uint64
	log      *zap.Logger
}

func NewRunner(log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{log: log.Named("runner")}
}

// Register appends s to its phase. Systems with an unknown phase are rejected.
func (r *Runner) Register(s System) {
	p := s.Phase()
	if p < 0 || int(p) >= len(r.phases) {
		r.log.Error("tick system has unknown phase", zap.Int("phase", int(p)))
		return
	}
	r.phases[p] = append(r.phases[p], s)
	r.n++
	r.log.Debug("tick system registered", zap.Stringer("phase", p))
}

func (r *Runner) Len() int { return r.n }

// Ticks returns how many full ticks have run.
func (r *Runner) Ticks() uint64 { return r.ticks }

// Overruns returns how many ticks took longer than their dt.
func (r *Runner) Overruns() uint64 { return r.overruns }

func (r *Runner) Tick(dt time.Duration) {
	start := time.Now()
	for _, systems := range r.phases {
		for _, s := range systems {
			s.Update(dt)
		}
	}
	r.ticks++

	if elapsed := time.Since(start); dt > 0 && elapsed > dt {
		r.overruns++
		r.log.Warn("tick overran",
			zap.Uint64("tick", r.ticks),
			zap.Duration("elapsed", elapsed),
			zap.Duration("budget", dt))
	}
}

// TickPhase runs only the systems of one phase. It does not count as a tick.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	if phase < 0 || int(phase) >= len(r.phases) {
		return
	}
	for _, s := range r.phases[phase] {
		s.Update(dt)
	}
}
