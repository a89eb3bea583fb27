package domain

import (
	"encoding/json"
	"strings"
)

// ActionKind tags one assistant instruction. The set is closed: anything the
// assistant emits that does not parse into one of these kinds is coerced to
// KindNoAction at the boundary and never reaches the planner.
type ActionKind string

const (
	KindModifyTrip      ActionKind = "MODIFY_TRIP"
	KindUpdateTripInfo  ActionKind = "UPDATE_TRIP_INFO"
	KindRemove          ActionKind = "REMOVE_DESTINATIONS"
	KindAdd             ActionKind = "ADD_DESTINATIONS"
	KindReorder         ActionKind = "REORDER_DESTINATIONS"
	KindMove            ActionKind = "MOVE_DESTINATION"
	KindRecommend       ActionKind = "RECOMMEND_PLACES"
	KindAskPersonalInfo ActionKind = "ASK_PERSONAL_INFO"
	KindNoAction        ActionKind = "NO_ACTION"
)

// actionPriority fixes execution order within a batch. Lower runs first.
// A trip-duration change must land before new destinations are day-assigned
// against it; removals free slots before additions reuse them; explicit
// reorders and moves act on the post-add state. Unknown kinds sort last.
var actionPriority = map[ActionKind]int{
	KindModifyTrip:     0,
	KindUpdateTripInfo: 1,
	KindRemove:         2,
	KindAdd:            3,
	KindReorder:        4,
	KindMove:           5,
}

// Priority returns the action's slot in the fixed execution order.
func (k ActionKind) Priority() int {
	if p, ok := actionPriority[k]; ok {
		return p
	}
	return len(actionPriority)
}

// Mutating reports whether the kind writes to the store. Advisory kinds
// (recommendations, questions, no-op) pass through to the caller unchanged.
func (k ActionKind) Mutating() bool {
	switch k {
	case KindModifyTrip, KindUpdateTripInfo, KindRemove, KindAdd, KindReorder, KindMove:
		return true
	}
	return false
}

// Action is the closed tagged union for one assistant instruction.
// Only the fields relevant to Kind are populated; the rest stay zero.
type Action struct {
	Kind ActionKind `json:"action"`

	// ADD_DESTINATIONS
	Destinations []DestinationDraft `json:"destinations,omitempty"`
	// Group-level day hint for the whole ADD batch, if the assistant gave one.
	TargetDay *int `json:"target_day,omitempty"`

	// REMOVE_DESTINATIONS
	DestinationNames []string `json:"destination_names,omitempty"`
	// Free-text fallback used only when no names were supplied.
	Context string `json:"context,omitempty"`

	// MOVE_DESTINATION
	Name           string `json:"name,omitempty"`
	MoveToDay      *int   `json:"to_day,omitempty"`
	TargetPosition *int   `json:"to_position,omitempty"`

	// REORDER_DESTINATIONS: an explicit full ordering.
	Ordering []OrderingEntry `json:"ordering,omitempty"`

	// MODIFY_TRIP / UPDATE_TRIP_INFO
	DayCount *int   `json:"day_count,omitempty"`
	Title    string `json:"title,omitempty"`

	// RECOMMEND_PLACES / ASK_PERSONAL_INFO advisory payloads.
	Recommendations []DestinationDraft `json:"recommendations,omitempty"`
	Question        string             `json:"question,omitempty"`
}

// OrderingEntry is one (name, day, position) triple of an explicit reorder.
type OrderingEntry struct {
	Name     string `json:"name"`
	Day      int    `json:"day"`
	Position int    `json:"position"`
}

// ParseActions decodes a raw assistant action batch into typed Actions.
// Unknown or unparseable entries are coerced to KindNoAction rather than
// rejected: a single malformed action must never poison the batch.
func ParseActions(raw []json.RawMessage) []Action {
	actions := make([]Action, 0, len(raw))
	for _, msg := range raw {
		var a Action
		if err := json.Unmarshal(msg, &a); err != nil {
			actions = append(actions, Action{Kind: KindNoAction})
			continue
		}
		a.Kind = ActionKind(strings.ToUpper(strings.TrimSpace(string(a.Kind))))
		if _, known := actionPriority[a.Kind]; !known {
			switch a.Kind {
			case KindRecommend, KindAskPersonalInfo, KindNoAction:
				// advisory, keep as-is
			default:
				a = Action{Kind: KindNoAction}
			}
		}
		actions = append(actions, a)
	}
	return actions
}
