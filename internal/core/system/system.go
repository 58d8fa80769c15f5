package system

import "time"

// Phase defines execution ordering within a single engine tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: window and input polling
	PhaseEvents                  // 1: deliver last tick's lifecycle events
	PhaseScript                  // 2: entity scripts
	PhasePhysics                 // 3: motion integration
	PhasePostUpdate              // 4: derived state after simulation
	PhaseRender                  // 5: graphics submission
	PhaseAudio                   // 6: audio emitters and listener
	PhaseCleanup                 // 7: destroy queued entities
)

var phaseNames = [...]string{"input", "events", "script", "physics", "post_update", "render", "audio", "cleanup"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// System is a per-tick unit of work. ECS systems that also need a tick
// implement it next to their component hooks.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
