package catalog

import (
	"context"
	"errors"

	"github.com/looplab/fsm"
)

// State is the search mode of a controller.
type State string

const (
	// StateIdle is the state before the first activation.
	StateIdle State = "idle"
	// StateBrowsing shows the full catalog, newest first.
	StateBrowsing State = "browsing"
	// StateFiltered shows the results of a name prefix search.
	StateFiltered State = "filtered"
)

const (
	eventBrowse = "browse"
	eventFilter = "filter"
)

func newSearchMachine(onEnter func(src, dst string)) *fsm.FSM {
	all := []string{string(StateIdle), string(StateBrowsing), string(StateFiltered)}
	return fsm.NewFSM(
		string(StateIdle),
		fsm.Events{
			{Name: eventBrowse, Src: all, Dst: string(StateBrowsing)},
			{Name: eventFilter, Src: all, Dst: string(StateFiltered)},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				onEnter(e.Src, e.Dst)
			},
		},
	)
}

// isFsmRealError filters out the non-errors fsm reports for self transitions.
func isFsmRealError(err error) bool {
	if err == nil {
		return false
	}

	var noTransition fsm.NoTransitionError
	var canceled fsm.CanceledError

	if errors.As(err, &noTransition) || errors.As(err, &canceled) {
		return false
	}

	return true
}
