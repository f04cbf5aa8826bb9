package employee

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// memoryStore is an in-memory StoreAPI with the same observable behaviour
// as the Postgres store.
type memoryStore struct {
	mu        sync.Mutex
	employees map[string]Employee
	seq       int
	err       error
	lists     int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{employees: map[string]Employee{}}
}

func (m *memoryStore) Insert(_ context.Context, payload Payload) (Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return Employee{}, m.err
	}
	for _, existing := range m.employees {
		if existing.NationalID == payload.NationalID {
			return Employee{}, ErrNationalIDTaken
		}
	}
	m.seq++
	now := time.Date(2024, 1, 1, 0, 0, m.seq, 0, time.UTC)
	emp := fromPayload(uuid.NewString(), payload, now)
	emp.CreatedAt = now
	m.employees[emp.ID] = emp
	return emp, nil
}

func (m *memoryStore) Get(_ context.Context, id string) (Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return Employee{}, m.err
	}
	emp, ok := m.employees[id]
	if !ok {
		return Employee{}, ErrNotFound
	}
	return emp, nil
}

func (m *memoryStore) List(_ context.Context) ([]Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.lists++
	out := make([]Employee, 0, len(m.employees))
	for _, emp := range m.employees {
		out = append(out, emp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryStore) Replace(_ context.Context, id string, payload Payload) (Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return Employee{}, m.err
	}
	current, ok := m.employees[id]
	if !ok {
		return Employee{}, ErrNotFound
	}
	m.seq++
	emp := fromPayload(id, payload, time.Date(2024, 1, 1, 0, 0, m.seq, 0, time.UTC))
	emp.CreatedAt = current.CreatedAt
	m.employees[id] = emp
	return emp, nil
}

func (m *memoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.employees[id]; !ok {
		return ErrNotFound
	}
	delete(m.employees, id)
	return nil
}

func (m *memoryStore) NationalIDTaken(_ context.Context, nationalID, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	for id, emp := range m.employees {
		if id != excludeID && emp.NationalID == nationalID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryStore) relationshipCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, emp := range m.employees {
		total += len(emp.Relationships)
	}
	return total
}

func fromPayload(id string, p Payload, now time.Time) Employee {
	emp := Employee{
		ID:                id,
		Name:              p.Name,
		NickName:          p.NickName,
		Profession:        p.Profession,
		BirthDate:         p.BirthDate,
		NationalID:        p.NationalID,
		MaritalStatus:     p.MaritalStatus,
		ResidenceLocation: p.ResidenceLocation,
		HiringDate:        p.HiringDate,
		HiringType:        p.HiringType,
		Email:             p.Email,
		Administration:    p.Administration,
		ActualWork:        p.ActualWork,
		PhoneNumber:       p.PhoneNumber,
		Notes:             p.Notes,
		Relationships:     []Relationship{},
		UpdatedAt:         now,
	}
	for _, r := range p.Relationships {
		emp.Relationships = append(emp.Relationships, Relationship{
			ID:                uuid.NewString(),
			EmployeeID:        id,
			RelationshipType:  r.RelationshipType,
			Name:              r.Name,
			NationalID:        r.NationalID,
			BirthDate:         r.BirthDate,
			BirthPlace:        r.BirthPlace,
			Profession:        r.Profession,
			SpouseName:        r.SpouseName,
			ResidenceLocation: r.ResidenceLocation,
			Notes:             r.Notes,
			CreatedAt:         now,
		})
	}
	return emp
}

type recordedAudit struct {
	actorID, action, entityID string
	before, after             any
}

type auditSpy struct {
	mu     sync.Mutex
	events []recordedAudit
}

func (a *auditSpy) Record(_ context.Context, actorID, action, _, entityID, _, _ string, before, after any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, recordedAudit{actorID: actorID, action: action, entityID: entityID, before: before, after: after})
	return nil
}

// gatedStore pauses the first List after it has taken its snapshot, so a
// write can commit while that read is still in flight.
type gatedStore struct {
	*memoryStore
	gated   atomic.Bool
	snapped chan struct{}
	release chan struct{}
}

func newGatedStore() *gatedStore {
	g := &gatedStore{
		memoryStore: newMemoryStore(),
		snapped:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	g.gated.Store(true)
	return g
}

func (g *gatedStore) List(ctx context.Context) ([]Employee, error) {
	out, err := g.memoryStore.List(ctx)
	if g.gated.CompareAndSwap(true, false) {
		close(g.snapped)
		<-g.release
	}
	return out, err
}
