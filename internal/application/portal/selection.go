package portal

// Selection State for one registration session, held as a pure reducer:
// Apply(state, event) returns a new state and never mutates its input,
// so the conflict/retry flow is unit-testable without any UI or network
// harness. A "network result arrived" is just another event.

// Session phases.
const (
	PhaseIdle       = "idle"
	PhaseLoading    = "loading"
	PhaseEditing    = "editing"
	PhaseConflicted = "conflicted"
	PhaseSubmitting = "submitting"
	PhaseCommitted  = "committed"
)

// Snapshot is an immutable copy of a selection used for unsaved-changes
// detection. Comparison is structural and order-independent.
type Snapshot struct {
	Events map[string]bool
	Slots  map[string]string
}

// State holds one registration session's selection.
type State struct {
	Phase          string
	SelectedEvents map[string]bool   // event ID -> selected
	SelectedSlots  map[string]string // event ID -> slot ID (RFC3339 UTC)
	Conflicts      map[string]bool   // event IDs flagged by the last failed commit
	LastError      string            // surfaced commit failure, empty otherwise

	// Initial is captured lazily exactly once, on the first non-empty
	// prefill, so a freshly populated form never reads as dirty. Nil
	// means "empty selection".
	Initial *Snapshot
}

// NewState returns the idle state for a fresh registration session.
func NewState() State {
	return State{Phase: PhaseIdle}
}

// Event is a selection state transition input.
type Event interface{ isSelectionEvent() }

// Opened starts loading the registration surface.
type Opened struct{}

// PrefillLoaded carries rows fetched for an existing registration.
// Merged, not replacing: choices the user made while the fetch was in
// flight are kept.
type PrefillLoaded struct {
	Events []string
	Slots  map[string]string
}

// ToggleEvent selects or deselects an event.
type ToggleEvent struct {
	EventID string
	On      bool
}

// ChooseSlot records the chosen time slot for an event.
type ChooseSlot struct {
	EventID string
	Slot    string
}

// SubmitStarted marks the commit as in flight.
type SubmitStarted struct{}

// ConflictsFound carries the event IDs rejected by the pre-commit
// availability check.
type ConflictsFound struct{ EventIDs []string }

// CommitSucceeded terminates the session.
type CommitSucceeded struct{}

// CommitFailed returns the session to editing with the error surfaced.
type CommitFailed struct{ Reason string }

func (Opened) isSelectionEvent()          {}
func (PrefillLoaded) isSelectionEvent()   {}
func (ToggleEvent) isSelectionEvent()     {}
func (ChooseSlot) isSelectionEvent()      {}
func (SubmitStarted) isSelectionEvent()   {}
func (ConflictsFound) isSelectionEvent()  {}
func (CommitSucceeded) isSelectionEvent() {}
func (CommitFailed) isSelectionEvent()    {}

// Apply computes the next state. The input state is never mutated.
// PRE: none
// POST: returns the successor state; unknown events return s unchanged
func Apply(s State, ev Event) State {
	switch e := ev.(type) {
	case Opened:
		next := clone(s)
		next.Phase = PhaseLoading
		return next

	case PrefillLoaded:
		next := clone(s)
		for _, id := range e.Events {
			next.SelectedEvents[id] = true
		}
		for id, slot := range e.Slots {
			if _, chosen := next.SelectedSlots[id]; !chosen {
				next.SelectedSlots[id] = slot
			}
			next.SelectedEvents[id] = true
		}
		if next.Initial == nil && (len(e.Events) > 0 || len(e.Slots) > 0) {
			next.Initial = snapshotOf(next)
		}
		next.Phase = PhaseEditing
		return next

	case ToggleEvent:
		next := clone(s)
		if e.On {
			next.SelectedEvents[e.EventID] = true
		} else {
			delete(next.SelectedEvents, e.EventID)
			// An event with no selection cannot carry a stale slot.
			delete(next.SelectedSlots, e.EventID)
		}
		delete(next.Conflicts, e.EventID)
		next.Phase = editingPhase(next)
		return next

	case ChooseSlot:
		next := clone(s)
		next.SelectedSlots[e.EventID] = e.Slot
		delete(next.Conflicts, e.EventID)
		next.Phase = editingPhase(next)
		return next

	case SubmitStarted:
		next := clone(s)
		next.Phase = PhaseSubmitting
		next.LastError = ""
		return next

	case ConflictsFound:
		next := clone(s)
		next.Conflicts = make(map[string]bool, len(e.EventIDs))
		for _, id := range e.EventIDs {
			next.Conflicts[id] = true
		}
		next.Phase = PhaseConflicted
		return next

	case CommitSucceeded:
		next := clone(s)
		next.Phase = PhaseCommitted
		next.Conflicts = map[string]bool{}
		next.LastError = ""
		return next

	case CommitFailed:
		next := clone(s)
		next.Phase = PhaseEditing
		next.LastError = e.Reason
		return next
	}
	return s
}

// editingPhase returns Conflicted while any flag remains, Editing once
// the user has changed every flagged selection.
func editingPhase(s State) string {
	if len(s.Conflicts) > 0 {
		return PhaseConflicted
	}
	return PhaseEditing
}

// HasUnsavedChanges reports whether the current selection differs
// structurally from the initial snapshot. Order never matters; edits
// that reconstruct the original selection read as unchanged.
// INVARIANT: State fields are not mutated
func (s State) HasUnsavedChanges() bool {
	initial := s.Initial
	if initial == nil {
		initial = &Snapshot{}
	}
	if len(s.SelectedEvents) != len(initial.Events) {
		return true
	}
	for id := range s.SelectedEvents {
		if !initial.Events[id] {
			return true
		}
	}
	if len(s.SelectedSlots) != len(initial.Slots) {
		return true
	}
	for id, slot := range s.SelectedSlots {
		if initial.Slots[id] != slot {
			return true
		}
	}
	return false
}

// SelectedEventIDs returns the selected event IDs in no particular
// order.
// INVARIANT: State fields are not mutated
func (s State) SelectedEventIDs() []string {
	ids := make([]string, 0, len(s.SelectedEvents))
	for id := range s.SelectedEvents {
		ids = append(ids, id)
	}
	return ids
}

// TotalFeeCents derives the session fee: competition base fee plus the
// fee of every currently selected event. Recomputed on demand, never
// stored except as the commit-time snapshot in the registration row.
// INVARIANT: State fields are not mutated
func (s State) TotalFeeCents(baseFeeCents int64, eventFees map[string]int64) int64 {
	total := baseFeeCents
	for id := range s.SelectedEvents {
		total += eventFees[id]
	}
	return total
}

func clone(s State) State {
	next := s
	next.SelectedEvents = make(map[string]bool, len(s.SelectedEvents))
	for k, v := range s.SelectedEvents {
		next.SelectedEvents[k] = v
	}
	next.SelectedSlots = make(map[string]string, len(s.SelectedSlots))
	for k, v := range s.SelectedSlots {
		next.SelectedSlots[k] = v
	}
	next.Conflicts = make(map[string]bool, len(s.Conflicts))
	for k, v := range s.Conflicts {
		next.Conflicts[k] = v
	}
	return next
}

func snapshotOf(s State) *Snapshot {
	snap := &Snapshot{
		Events: make(map[string]bool, len(s.SelectedEvents)),
		Slots:  make(map[string]string, len(s.SelectedSlots)),
	}
	for k, v := range s.SelectedEvents {
		snap.Events[k] = v
	}
	for k, v := range s.SelectedSlots {
		snap.Slots[k] = v
	}
	return snap
}
