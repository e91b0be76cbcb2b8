package devstore

import (
	"errors"
	"sync"

	"github.com/kingrea/roster/internal/employee"
)

var (
	errNotFound = errors.New("employee not found")
	errConflict = errors.New("employee id already exists")
)

// Memory is an insertion-ordered, in-memory employees collection.
type Memory struct {
	mu      sync.RWMutex
	order   []string
	records map[string]employee.Employee
}

// NewMemory returns a collection seeded with the given records.
func NewMemory(seed ...employee.Employee) *Memory {
	m := &Memory{records: map[string]employee.Employee{}}
	for _, e := range seed {
		_ = m.Create(e)
	}
	return m
}

// List returns a snapshot of every record in insertion order.
func (m *Memory) List() []employee.Employee {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]employee.Employee, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.records[id].Clone())
	}
	return out
}

// Get returns one record.
func (m *Memory) Get(id string) (employee.Employee, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.records[id]
	return e.Clone(), ok
}

// Create inserts e; the id must be new.
func (m *Memory) Create(e employee.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[e.ID]; ok {
		return errConflict
	}
	m.records[e.ID] = e.Clone()
	m.order = append(m.order, e.ID)
	return nil
}

// Replace overwrites the record stored under id.
func (m *Memory) Replace(id string, e employee.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return errNotFound
	}
	e.ID = id
	m.records[id] = e.Clone()
	return nil
}

// Delete removes the record stored under id.
func (m *Memory) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return errNotFound
	}
	delete(m.records, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of stored records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}
