package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stemsi/evaluation-backend/internal/apperr"
	"github.com/stemsi/evaluation-backend/internal/model"
)

// memStore backs both fake repositories so subject deletes can cascade.
type memStore struct {
	mu           sync.Mutex
	subjects     map[int]model.Subject
	competencies map[int]model.Competency
	nextSubject  int
	nextComp     int
	failWith     error
}

func newMemStore() *memStore {
	return &memStore{
		subjects:     map[int]model.Subject{},
		competencies: map[int]model.Competency{},
	}
}

type fakeSubjectRepo struct{ s *memStore }

func (r fakeSubjectRepo) FindAll(context.Context) ([]model.Subject, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	out := []model.Subject{}
	for _, v := range r.s.subjects {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r fakeSubjectRepo) FindByID(_ context.Context, id int) (*model.Subject, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if v, ok := r.s.subjects[id]; ok {
		return &v, nil
	}
	return nil, nil
}

func (r fakeSubjectRepo) FindByName(_ context.Context, name string) (*model.Subject, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.subjects {
		if v.Name == name {
			v := v
			return &v, nil
		}
	}
	return nil, nil
}

func (r fakeSubjectRepo) Exists(_ context.Context, id int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.subjects[id]
	return ok, nil
}

func (r fakeSubjectRepo) Create(_ context.Context, req *model.CreateSubjectRequest) (*model.Subject, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	for _, v := range r.s.subjects {
		if v.Name == req.Name {
			return nil, apperr.Conflict(apperr.ReasonDuplicateName, model.MsgSubjectNameExists)
		}
	}
	r.s.nextSubject++
	now := time.Now()
	v := model.Subject{ID: r.s.nextSubject, Name: req.Name, Description: req.Description, CreatedAt: now, UpdatedAt: now}
	r.s.subjects[v.ID] = v
	return &v, nil
}

func (r fakeSubjectRepo) Update(_ context.Context, id int, req *model.UpdateSubjectRequest) (*model.Subject, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.subjects[id]
	if !ok {
		return nil, nil
	}
	if req.Name != nil {
		v.Name = *req.Name
	}
	if req.Description != nil {
		v.Description = req.Description
	}
	v.UpdatedAt = time.Now()
	r.s.subjects[id] = v
	return &v, nil
}

func (r fakeSubjectRepo) Delete(_ context.Context, id int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.subjects[id]; !ok {
		return false, nil
	}
	delete(r.s.subjects, id)
	for cid, c := range r.s.competencies {
		if c.SubjectID == id {
			delete(r.s.competencies, cid)
		}
	}
	return true, nil
}

type fakeCompetencyRepo struct{ s *memStore }

func (r fakeCompetencyRepo) FindAll(context.Context) ([]model.Competency, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Competency{}
	for _, v := range r.s.competencies {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeCompetencyRepo) FindByID(_ context.Context, id int) (*model.Competency, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if v, ok := r.s.competencies[id]; ok {
		return &v, nil
	}
	return nil, nil
}

func (r fakeCompetencyRepo) FindBySubject(_ context.Context, subjectID int) ([]model.Competency, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Competency{}
	for _, v := range r.s.competencies {
		if v.SubjectID == subjectID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Marks != out[j].Marks {
			return out[i].Marks > out[j].Marks
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r fakeCompetencyRepo) FindBySubjectAndName(_ context.Context, subjectID int, name string) (*model.Competency, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.competencies {
		if v.SubjectID == subjectID && v.Name == name {
			v := v
			return &v, nil
		}
	}
	return nil, nil
}

func (r fakeCompetencyRepo) CountBySubject(ctx context.Context, subjectID int) (int, error) {
	list, err := r.FindBySubject(ctx, subjectID)
	return len(list), err
}

func (r fakeCompetencyRepo) Create(_ context.Context, req *model.CreateCompetencyRequest) (*model.Competency, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.subjects[req.SubjectID]; !ok {
		return nil, apperr.Conflict(apperr.ReasonMissingParent, "Referenced subject does not exist")
	}
	r.s.nextComp++
	now := time.Now()
	v := model.Competency{ID: r.s.nextComp, SubjectID: req.SubjectID, Name: req.Name, Marks: *req.Marks, CreatedAt: now, UpdatedAt: now}
	r.s.competencies[v.ID] = v
	return &v, nil
}

func (r fakeCompetencyRepo) Update(_ context.Context, id int, req *model.UpdateCompetencyRequest) (*model.Competency, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.competencies[id]
	if !ok {
		return nil, nil
	}
	if req.Name != nil {
		v.Name = *req.Name
	}
	if req.Marks != nil {
		v.Marks = *req.Marks
	}
	v.UpdatedAt = time.Now()
	r.s.competencies[id] = v
	return &v, nil
}

func (r fakeCompetencyRepo) Delete(_ context.Context, id int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.competencies[id]; !ok {
		return false, nil
	}
	delete(r.s.competencies, id)
	return true, nil
}

func (r fakeCompetencyRepo) DeleteBySubject(_ context.Context, subjectID int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, v := range r.s.competencies {
		if v.SubjectID == subjectID {
			delete(r.s.competencies, id)
			n++
		}
	}
	return n, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.ChangeEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev model.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type())
	}
	return out
}
