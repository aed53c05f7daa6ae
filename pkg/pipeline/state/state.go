// Package state enumerates the pipeline run states.
package state

// State is a pipeline run state. Runs are strictly forward-progressing and
// single-shot: no transition returns to an earlier state.
type State string

const (
	Idle               State = "idle"
	GatedOut           State = "gated_out"
	Provisioning       State = "provisioning"
	RunningCounter     State = "running_counter"
	RunningStatistical State = "running_statistical"
	Composing          State = "composing"
	Publishing         State = "publishing"
	Done               State = "done"
	Failed             State = "failed"
)

// Terminal reports whether a run can leave this state.
func (s State) Terminal() bool {
	switch s {
	case GatedOut, Done, Failed:
		return true
	default:
		return false
	}
}
