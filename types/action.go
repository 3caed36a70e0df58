package types

import (
	"errors"
	"fmt"
)

// ErrInvalidAction is returned for an action outside the discrete action set.
var ErrInvalidAction = errors.New("invalid action")

// ActionVector is the 7 component native action: look left/right, look
// down/up, strafe left/right, move back/forward, fire, jump, crouch.
type ActionVector [7]int32

// NoopVector does nothing for a frame.
var NoopVector = ActionVector{}

// Action is one of the discrete actions exposed to agents.
type Action int

const (
	LookLeft Action = iota
	LookRight
	Forward
	Backward
)

// AllActions in index order.
var AllActions = []Action{LookLeft, LookRight, Forward, Backward}

var actionVectors = map[Action]ActionVector{
	LookLeft:  {-20, 0, 0, 0, 0, 0, 0},
	LookRight: {20, 0, 0, 0, 0, 0, 0},
	Forward:   {0, 0, 0, 1, 0, 0, 0},
	Backward:  {0, 0, 0, -1, 0, 0, 0},
}

var actionNames = map[Action]string{
	LookLeft:  "LookLeft",
	LookRight: "LookRight",
	Forward:   "Forward",
	Backward:  "Backward",
}

// ActionFromIndex maps a discrete action index to its Action.
func ActionFromIndex(i int) (Action, error) {
	if i < 0 || i >= len(AllActions) {
		return 0, fmt.Errorf("%w: index %d, expected 0 <= index < %d", ErrInvalidAction, i, len(AllActions))
	}
	return AllActions[i], nil
}

// Vector returns the native action vector.
func (a Action) Vector() (ActionVector, error) {
	v, ok := actionVectors[a]
	if !ok {
		return ActionVector{}, fmt.Errorf("%w: %d", ErrInvalidAction, int(a))
	}
	return v, nil
}

// ParseAction maps an action name such as "Forward" to its Action.
func ParseAction(name string) (Action, error) {
	for a, n := range actionNames {
		if n == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidAction, name)
}

// MarshalText writes the action name, so traces and weight maps read as
// names rather than indices.
func (a Action) MarshalText() ([]byte, error) {
	if _, ok := actionNames[a]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAction, int(a))
	}
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Action(%d)", int(a))
}
