package exam

import (
	"context"
	"sort"
	"sync"
)

// memoryStore backs tests and offline demos; same contract as SQLStore.
type memoryStore struct {
	mu      sync.RWMutex
	exams   map[string]Exam
	courses map[string]Course
	owners  map[string]map[string]bool // courseID -> instructorID set
	order   []string                   // exam insertion order
}

func NewInMemoryStore() Store {
	return &memoryStore{
		exams:   map[string]Exam{},
		courses: map[string]Course{},
		owners:  map[string]map[string]bool{},
	}
}

func cloneExam(e Exam) Exam {
	qs := make([]Question, len(e.Questions))
	copy(qs, e.Questions)
	for i := range qs {
		opts := make([]Option, len(qs[i].Options))
		copy(opts, qs[i].Options)
		qs[i].Options = opts
	}
	e.Questions = qs
	return e
}

func (m *memoryStore) PutExam(_ context.Context, e Exam) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.exams[e.ID]; !ok {
		m.order = append(m.order, e.ID)
	}
	m.exams[e.ID] = cloneExam(e)
	return nil
}

func (m *memoryStore) UpdateExam(_ context.Context, e Exam) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.exams[e.ID]; !ok {
		return ErrNotFound
	}
	m.exams[e.ID] = cloneExam(e)
	return nil
}

func (m *memoryStore) GetExam(_ context.Context, id string) (Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.exams[id]
	if !ok {
		return Exam{}, ErrNotFound
	}
	return cloneExam(e), nil
}

func (m *memoryStore) ListExamsByInstructor(_ context.Context, instructorID string) ([]Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Exam
	for _, id := range m.order {
		e := m.exams[id]
		if m.owners[e.Course.ID][instructorID] {
			out = append(out, cloneExam(e))
		}
	}
	return out, nil
}

func (m *memoryStore) CreateCourse(_ context.Context, c Course, instructorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courses[c.ID] = c
	if m.owners[c.ID] == nil {
		m.owners[c.ID] = map[string]bool{}
	}
	m.owners[c.ID][instructorID] = true
	return nil
}

func (m *memoryStore) GetCourse(_ context.Context, id string) (Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.courses[id]
	if !ok {
		return Course{}, ErrCourseNotFound
	}
	return c, nil
}

func (m *memoryStore) ListCoursesByInstructor(_ context.Context, instructorID string) ([]Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Course
	for id, c := range m.courses {
		if m.owners[id][instructorID] {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryStore) CourseOwnedBy(_ context.Context, courseID, instructorID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.owners[courseID][instructorID], nil
}
