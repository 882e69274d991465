package wire

import "github.com/sdc-protocol/sdc-go/pkg/sco"

// Action identifies the request type on the wire.
type Action uint8

const (
	// ActionSetValue sets a numeric metric.
	ActionSetValue Action = 1

	// ActionSetString sets a string or enum string metric.
	ActionSetString Action = 2

	// ActionSetContextState proposes context states.
	ActionSetContextState Action = 3

	// ActionSetMetricState proposes metric states.
	ActionSetMetricState Action = 4

	// ActionSetComponentState proposes component states.
	ActionSetComponentState Action = 5

	// ActionSetAlertState proposes an alert state.
	ActionSetAlertState Action = 6

	// ActionActivate triggers a device function.
	ActionActivate Action = 7
)

var actionKinds = map[Action]sco.Kind{
	ActionSetValue:          sco.KindSetValue,
	ActionSetString:         sco.KindSetString,
	ActionSetContextState:   sco.KindSetContextState,
	ActionSetMetricState:    sco.KindSetMetricState,
	ActionSetComponentState: sco.KindSetComponentState,
	ActionSetAlertState:     sco.KindSetAlertState,
	ActionActivate:          sco.KindActivate,
}

// String returns the action name.
func (a Action) String() string {
	if k, ok := actionKinds[a]; ok {
		return k.String()
	}
	return "Unknown"
}

// IsValid returns true if the action is a known request type.
func (a Action) IsValid() bool {
	_, ok := actionKinds[a]
	return ok
}

// Kind returns the operation kind the action invokes.
func (a Action) Kind() (sco.Kind, bool) {
	k, ok := actionKinds[a]
	return k, ok
}

// ActionFor returns the action invoking operations of kind k.
func ActionFor(k sco.Kind) (Action, bool) {
	for a, ak := range actionKinds {
		if ak == k {
			return a, true
		}
	}
	return 0, false
}
