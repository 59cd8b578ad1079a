package client

import (
	"context"
	"slices"
	"sync"
)

const (
	MsgSubjectCreated    = "Subject created successfully"
	MsgSubjectUpdated    = "Subject updated successfully"
	MsgSubjectDeleted    = "Subject deleted successfully"
	MsgCompetencyCreated = "Competency created successfully"
	MsgCompetencyUpdated = "Competency updated successfully"
	MsgCompetencyDeleted = "Competency deleted successfully"
)

// Notifier receives one message per store operation outcome.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type NopNotifier struct{}

func (NopNotifier) Success(string) {}
func (NopNotifier) Error(string)   {}

// SubjectStore owns the cached subject list. A mutation either updates the
// list and notifies success, or leaves it untouched, notifies the failure
// and returns the error.
type SubjectStore struct {
	client *Client
	notify Notifier

	mu       sync.RWMutex
	subjects []Subject
}

func NewSubjectStore(c *Client, n Notifier) *SubjectStore {
	if n == nil {
		n = NopNotifier{}
	}
	return &SubjectStore{client: c, notify: n}
}

// Subjects returns a copy of the cached list, newest first.
func (s *SubjectStore) Subjects() []Subject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.subjects)
}

// Fetch replaces the cached list with the server's.
func (s *SubjectStore) Fetch(ctx context.Context) error {
	list, err := s.client.ListSubjects(ctx)
	if err != nil {
		s.notify.Error(Message(err))
		return err
	}

	s.mu.Lock()
	s.subjects = list
	s.mu.Unlock()
	return nil
}

func (s *SubjectStore) Create(ctx context.Context, req CreateSubjectRequest) (*Subject, error) {
	created, err := s.client.CreateSubject(ctx, req)
	if err != nil {
		s.notify.Error(Message(err))
		return nil, err
	}

	s.mu.Lock()
	s.subjects = append([]Subject{*created}, s.subjects...)
	s.mu.Unlock()

	s.notify.Success(MsgSubjectCreated)
	return created, nil
}

func (s *SubjectStore) Update(ctx context.Context, id int, req UpdateSubjectRequest) (*Subject, error) {
	updated, err := s.client.UpdateSubject(ctx, id, req)
	if err != nil {
		s.notify.Error(Message(err))
		return nil, err
	}

	s.mu.Lock()
	for i := range s.subjects {
		if s.subjects[i].ID == id {
			s.subjects[i] = *updated
		}
	}
	s.mu.Unlock()

	s.notify.Success(MsgSubjectUpdated)
	return updated, nil
}

func (s *SubjectStore) Delete(ctx context.Context, id int) error {
	if err := s.client.DeleteSubject(ctx, id); err != nil {
		s.notify.Error(Message(err))
		return err
	}

	s.mu.Lock()
	s.subjects = slices.DeleteFunc(s.subjects, func(sub Subject) bool { return sub.ID == id })
	s.mu.Unlock()

	s.notify.Success(MsgSubjectDeleted)
	return nil
}

// CompetencyCounts issues one lookup per cached subject. A failed lookup counts as zero.
func (s *SubjectStore) CompetencyCounts(ctx context.Context) map[int]int {
	subjects := s.Subjects()
	counts := make(map[int]int, len(subjects))
	for _, sub := range subjects {
		list, err := s.client.ListCompetenciesBySubject(ctx, sub.ID)
		if err != nil {
			counts[sub.ID] = 0
			continue
		}
		counts[sub.ID] = len(list)
	}
	return counts
}

// CompetencyStore owns the cached competency list of one subject.
type CompetencyStore struct {
	client    *Client
	notify    Notifier
	subjectID int

	mu           sync.RWMutex
	competencies []Competency
}

func NewCompetencyStore(c *Client, subjectID int, n Notifier) *CompetencyStore {
	if n == nil {
		n = NopNotifier{}
	}
	return &CompetencyStore{client: c, subjectID: subjectID, notify: n}
}

func (s *CompetencyStore) Competencies() []Competency {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.competencies)
}

// Fetch is a no-op until the store is bound to a subject.
func (s *CompetencyStore) Fetch(ctx context.Context) error {
	if s.subjectID <= 0 {
		return nil
	}

	list, err := s.client.ListCompetenciesBySubject(ctx, s.subjectID)
	if err != nil {
		s.notify.Error(Message(err))
		return err
	}

	s.mu.Lock()
	s.competencies = list
	s.mu.Unlock()
	return nil
}

func (s *CompetencyStore) Create(ctx context.Context, req CreateCompetencyRequest) (*Competency, error) {
	created, err := s.client.CreateCompetency(ctx, req)
	if err != nil {
		s.notify.Error(Message(err))
		return nil, err
	}

	s.mu.Lock()
	s.competencies = append(s.competencies, *created)
	s.mu.Unlock()

	s.notify.Success(MsgCompetencyCreated)
	return created, nil
}

func (s *CompetencyStore) Update(ctx context.Context, id int, req UpdateCompetencyRequest) (*Competency, error) {
	updated, err := s.client.UpdateCompetency(ctx, id, req)
	if err != nil {
		s.notify.Error(Message(err))
		return nil, err
	}

	s.mu.Lock()
	for i := range s.competencies {
		if s.competencies[i].ID == id {
			s.competencies[i] = *updated
		}
	}
	s.mu.Unlock()

	s.notify.Success(MsgCompetencyUpdated)
	return updated, nil
}

func (s *CompetencyStore) Delete(ctx context.Context, id int) error {
	if err := s.client.DeleteCompetency(ctx, id); err != nil {
		s.notify.Error(Message(err))
		return err
	}

	s.mu.Lock()
	s.competencies = slices.DeleteFunc(s.competencies, func(c Competency) bool { return c.ID == id })
	s.mu.Unlock()

	s.notify.Success(MsgCompetencyDeleted)
	return nil
}
