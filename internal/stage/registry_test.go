package stage

import (
	"context"
	"testing"
)

type fakeStage struct {
	id string
}

func (s *fakeStage) ID() string          { return s.id }
func (s *fakeStage) Title() string       { return "Fake stage" }
func (s *fakeStage) Description() string { return "Test-only stage" }
func (s *fakeStage) Run(ctx context.Context, st *State) Result {
	return Pass(s.id, "")
}

func TestRegisterAndResolveOrder(t *testing.T) {
	Register(&fakeStage{id: "zz-first"})
	Register(&fakeStage{id: "aa-second"})

	// Resolve preserves selector order, not lexical order.
	got, err := Resolve("zz-first, aa-second")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(got) != 2 || got[0].ID() != "zz-first" || got[1].ID() != "aa-second" {
		ids := make([]string, len(got))
		for i, s := range got {
			ids[i] = s.ID()
		}
		t.Errorf("Resolve order = %v, want [zz-first aa-second]", ids)
	}
}

func TestResolveUnknownStage(t *testing.T) {
	if _, err := Resolve("no-such-stage"); err == nil {
		t.Error("expected error for unknown stage")
	}
	if _, err := Resolve(""); err == nil {
		t.Error("expected error for empty selector")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register(&fakeStage{id: "dup-stage"})
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	Register(&fakeStage{id: "dup-stage"})
}

func TestListSortedByID(t *testing.T) {
	stages := List()
	for i := 1; i < len(stages); i++ {
		if stages[i-1].ID() > stages[i].ID() {
			t.Errorf("List not sorted: %s before %s", stages[i-1].ID(), stages[i].ID())
		}
	}
}
