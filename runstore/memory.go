package runstore

import (
	"context"
	"sync"

	"github.com/geoknoesis/rdf-tabular/dataset"
)

// Memory is a process-local Store.
type Memory struct {
	mu   sync.RWMutex
	runs map[string]dataset.StoredRun
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{runs: make(map[string]dataset.StoredRun)}
}

func (m *Memory) Put(ctx context.Context, run *dataset.StoredRun) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkRun(run); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.GraphIRI] = cloneRun(*run)
	return nil
}

func (m *Memory) List(ctx context.Context) ([]dataset.RunSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	list := make([]dataset.RunSummary, 0, len(m.runs))
	for _, run := range m.runs {
		list = append(list, run.Summary())
	}
	m.mu.RUnlock()
	sortSummaries(list)
	return list, nil
}

func (m *Memory) Get(ctx context.Context, graphIRI string) (*dataset.StoredRun, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[graphIRI]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneRun(run)
	return &out, nil
}

func (m *Memory) Delete(ctx context.Context, graphIRI string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[graphIRI]; !ok {
		return ErrNotFound
	}
	delete(m.runs, graphIRI)
	return nil
}

func (m *Memory) Close() error { return nil }

func cloneRun(run dataset.StoredRun) dataset.StoredRun {
	run.Quads = append([]dataset.QuadRecord(nil), run.Quads...)
	return run
}
