package stage

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	registry = make(map[string]Stage)
	mu       sync.RWMutex
)

func Register(s Stage) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[s.ID()]; exists {
		panic(fmt.Sprintf("stage %s already registered", s.ID()))
	}
	registry[s.ID()] = s
}

// List returns all registered stages sorted by ID. Pipeline execution
// order comes from Resolve, not from List.
func List() []Stage {
	mu.RLock()
	defer mu.RUnlock()
	var stages []Stage
	for _, s := range registry {
		stages = append(stages, s)
	}
	sort.Slice(stages, func(i, j int) bool {
		return stages[i].ID() < stages[j].ID()
	})
	return stages
}

// Resolve turns a comma-separated selector into an ordered stage sequence.
// The selector order is preserved; it is the pipeline's execution order.
func Resolve(selector string) ([]Stage, error) {
	mu.RLock()
	defer mu.RUnlock()

	if selector == "" {
		return nil, fmt.Errorf("empty stage selector")
	}

	ids := strings.Split(selector, ",")
	var selected []Stage
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if s, ok := registry[id]; ok {
			selected = append(selected, s)
		} else {
			return nil, fmt.Errorf("stage not found: %s", id)
		}
	}
	return selected, nil
}
