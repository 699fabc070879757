package model

import "fmt"

// TransitionPolicy lists, per current status, the statuses a ticket may move to.
// A nil policy allows every transition.
type TransitionPolicy map[BookingStatus][]BookingStatus

func (p TransitionPolicy) Allows(from, to BookingStatus) bool {
	if p == nil {
		return true
	}
	for _, s := range p[from] {
		if s == to {
			return true
		}
	}
	return false
}

var PermissivePolicy = TransitionPolicy{
	Free:   {Free, Booked, Selled},
	Booked: {Free, Booked, Selled},
	Selled: {Free, Booked, Selled},
}

// StrictPolicy treats Selled as terminal.
var StrictPolicy = TransitionPolicy{
	Free:   {Free, Booked, Selled},
	Booked: {Free, Booked, Selled},
	Selled: {},
}

func PolicyByName(name string) (TransitionPolicy, error) {
	switch name {
	case "", "permissive":
		return PermissivePolicy, nil
	case "strict":
		return StrictPolicy, nil
	}
	return nil, fmt.Errorf("unknown transition policy %q", name)
}
