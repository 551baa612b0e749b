package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/snow-ghost/interviewer/core"
)

// MemoryStore keeps everything in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	sessions    map[string]core.Session
	turns       map[string][]core.Turn
	evaluations map[string]core.EvaluationReport
}

var _ core.SessionStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:    make(map[string]core.Session),
		turns:       make(map[string][]core.Turn),
		evaluations: make(map[string]core.EvaluationReport),
	}
}

func (m *MemoryStore) CreateSession(ctx context.Context, s core.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[s.ID]; exists {
		return fmt.Errorf("session %s already exists", s.ID)
	}
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *MemoryStore) SaveSession(ctx context.Context, s core.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[s.ID]; !exists {
		return fmt.Errorf("%w: %s", core.ErrSessionNotFound, s.ID)
	}
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *MemoryStore) LoadSession(ctx context.Context, id string) (core.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return core.Session{}, fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
	}
	return s.Clone(), nil
}

func (m *MemoryStore) AppendTurn(ctx context.Context, sessionID string, turn core.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[sessionID]; !exists {
		return fmt.Errorf("%w: %s", core.ErrSessionNotFound, sessionID)
	}
	for _, t := range m.turns[sessionID] {
		if t.Seq == turn.Seq {
			return fmt.Errorf("turn %d of session %s already exists", turn.Seq, sessionID)
		}
	}
	m.turns[sessionID] = append(m.turns[sessionID], turn)
	return nil
}

func (m *MemoryStore) CommitTurn(ctx context.Context, s core.Session, turns ...core.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[s.ID]; !exists {
		return fmt.Errorf("%w: %s", core.ErrSessionNotFound, s.ID)
	}
	seen := make(map[int]bool, len(m.turns[s.ID])+len(turns))
	for _, t := range m.turns[s.ID] {
		seen[t.Seq] = true
	}
	for _, t := range turns {
		if seen[t.Seq] {
			return fmt.Errorf("turn %d of session %s already exists", t.Seq, s.ID)
		}
		seen[t.Seq] = true
	}

	m.sessions[s.ID] = s.Clone()
	m.turns[s.ID] = append(m.turns[s.ID], turns...)
	return nil
}

func (m *MemoryStore) Turns(ctx context.Context, sessionID string) ([]core.Turn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := append([]core.Turn(nil), m.turns[sessionID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (m *MemoryStore) SaveEvaluation(ctx context.Context, report core.EvaluationReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[report.SessionID]; !exists {
		return fmt.Errorf("%w: %s", core.ErrSessionNotFound, report.SessionID)
	}
	m.evaluations[report.SessionID] = report
	return nil
}

func (m *MemoryStore) LoadEvaluation(ctx context.Context, sessionID string) (core.EvaluationReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.evaluations[sessionID]
	if !ok {
		return core.EvaluationReport{}, fmt.Errorf("%w: %s", core.ErrReportNotReady, sessionID)
	}
	return r, nil
}

func (m *MemoryStore) PendingEvaluations(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []string
	for id, s := range m.sessions {
		if !s.Complete() {
			continue
		}
		if _, done := m.evaluations[id]; !done {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
