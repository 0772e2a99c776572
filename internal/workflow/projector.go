package workflow

import (
	"sort"

	"revengine/internal/domain"
)

// Project replays events (sorted by Seq) starting from DRAFT and returns the
// resulting workflow state. It is the single source of truth for "current
// state": get_workflow never trusts a stored state column without
// re-deriving it this way. Returns an error on the first illegal
// transition encountered; the caller gets no partial projection.
func Project(events []*domain.WorkflowEvent) (domain.WorkflowState, error) {
	sorted := make([]*domain.WorkflowEvent, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Seq < sorted[j].Seq })

	state := domain.WorkflowDraft
	for _, ev := range sorted {
		next, err := ValidateTransition(state, ev.EventType)
		if err != nil {
			return "", err
		}
		state = next
	}
	return state, nil
}

// ValidateSequence sorts a copy of events by Seq and checks that the
// sequence numbers begin at 1 and are strictly increasing and gap-free —
// the §3 log-shape invariant, independent of transition legality. The
// order in which events are passed in is not checked.
func ValidateSequence(events []*domain.WorkflowEvent) error {
	sorted := make([]*domain.WorkflowEvent, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Seq < sorted[j].Seq })
	for i, ev := range sorted {
		want := int64(i + 1)
		if ev.Seq != want {
			return domain.ErrValidation("workflow event sequence not gap-free: expected seq %d, got %d", want, ev.Seq)
		}
	}
	return nil
}
