package types

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestActionVectors(t *testing.T) {
	for i, a := range AllActions {
		got, err := ActionFromIndex(i)
		if err != nil || got != a {
			t.Errorf("index %d: expected %s, got %s (%v)", i, a, got, err)
		}
		if _, err := a.Vector(); err != nil {
			t.Errorf("%s has no vector: %v", a, err)
		}
	}
	if _, err := ActionFromIndex(4); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("expected ErrInvalidAction, got %v", err)
	}
	if _, err := Action(9).Vector(); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("expected ErrInvalidAction, got %v", err)
	}
}

func TestActionJSONUsesNames(t *testing.T) {
	bs, err := json.Marshal(struct {
		Action Action `json:"action"`
	}{Forward})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(bs) != `{"action":"Forward"}` {
		t.Errorf("unexpected encoding %s", bs)
	}

	var decoded struct {
		Action Action `json:"action"`
	}
	if err := json.Unmarshal([]byte(`{"action":"LookRight"}`), &decoded); err != nil || decoded.Action != LookRight {
		t.Errorf("expected LookRight, got %s (%v)", decoded.Action, err)
	}
	if err := json.Unmarshal([]byte(`{"action":"Jump"}`), &decoded); err == nil {
		t.Errorf("expected an error for an unknown action name")
	}
	if _, err := json.Marshal(Action(7)); err == nil {
		t.Errorf("expected an error for an invalid action")
	}
}

func TestParseAction(t *testing.T) {
	for _, a := range AllActions {
		got, err := ParseAction(a.String())
		if err != nil || got != a {
			t.Errorf("expected %s, got %s (%v)", a, got, err)
		}
	}
	if _, err := ParseAction("forward"); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("expected ErrInvalidAction, got %v", err)
	}
}
