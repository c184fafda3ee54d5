package stage

import (
	"context"

	"sctci/internal/config"
	"sctci/internal/env"
)

// State is the mutable carrier threaded through one pipeline run. Cfg is
// read-only. Env starts as a snapshot of the process environment; the
// bootstrap stage replaces it exactly once with the environment the
// installer profile produces, and every later stage reads it from here.
type State struct {
	Cfg *config.Config
	Env *env.Env
}

type Stage interface {
	ID() string
	Title() string
	Description() string

	// Run executes the stage against the current run state and returns its
	// Gate Decision. Run must not mutate State except for the documented
	// Env hand-off by the bootstrap stage.
	Run(ctx context.Context, st *State) Result
}
