package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/stemsi/evaluation-backend/internal/apperr"
	"github.com/stemsi/evaluation-backend/internal/event"
	"github.com/stemsi/evaluation-backend/internal/model"
	"github.com/stemsi/evaluation-backend/internal/repository"
)

type SubjectService interface {
	GetAllSubjects(ctx context.Context) ([]model.Subject, error)
	GetSubjectByID(ctx context.Context, id int) (*model.Subject, error)
	CreateSubject(ctx context.Context, req *model.CreateSubjectRequest) (*model.Subject, error)
	UpdateSubject(ctx context.Context, id int, req *model.UpdateSubjectRequest) (*model.Subject, error)
	DeleteSubject(ctx context.Context, id int) error
}

type subjectService struct {
	subjectRepo    repository.SubjectRepository
	competencyRepo repository.CompetencyRepository
	events         event.Publisher
	log            zerolog.Logger
}

func NewSubjectService(
	subjectRepo repository.SubjectRepository,
	competencyRepo repository.CompetencyRepository,
	events event.Publisher,
	log zerolog.Logger,
) SubjectService {
	if events == nil {
		events = event.Nop{}
	}
	return &subjectService{
		subjectRepo:    subjectRepo,
		competencyRepo: competencyRepo,
		events:         events,
		log:            log.With().Str("component", "subject_service").Logger(),
	}
}

func (s *subjectService) GetAllSubjects(ctx context.Context) ([]model.Subject, error) {
	return s.subjectRepo.FindAll(ctx)
}

func (s *subjectService) GetSubjectByID(ctx context.Context, id int) (*model.Subject, error) {
	subject, err := s.subjectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if subject == nil {
		return nil, apperr.NotFound("Subject", id)
	}
	return subject, nil
}

func (s *subjectService) CreateSubject(ctx context.Context, req *model.CreateSubjectRequest) (*model.Subject, error) {
	existing, err := s.subjectRepo.FindByName(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict(apperr.ReasonDuplicateName, model.MsgSubjectNameExists)
	}

	subject, err := s.subjectRepo.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int("subject_id", subject.ID).Str("name", subject.Name).Msg("Subject created")
	publish(ctx, s.events, s.log, event.New(model.EntitySubject, model.ActionCreated, subject.ID, 0, subject))
	return subject, nil
}

func (s *subjectService) UpdateSubject(ctx context.Context, id int, req *model.UpdateSubjectRequest) (*model.Subject, error) {
	current, err := s.GetSubjectByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Check uniqueness if changing name
	if req.Name != nil && *req.Name != current.Name {
		existing, err := s.subjectRepo.FindByName(ctx, *req.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, apperr.Conflict(apperr.ReasonDuplicateName, model.MsgSubjectNameExists)
		}
	}

	subject, err := s.subjectRepo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if subject == nil {
		// deleted between the lookup and the update
		return nil, apperr.NotFound("Subject", id)
	}

	s.log.Info().Int("subject_id", id).Msg("Subject updated")
	publish(ctx, s.events, s.log, event.New(model.EntitySubject, model.ActionUpdated, subject.ID, 0, subject))
	return subject, nil
}

func (s *subjectService) DeleteSubject(ctx context.Context, id int) error {
	if _, err := s.GetSubjectByID(ctx, id); err != nil {
		return err
	}

	// Competencies go with the subject through ON DELETE CASCADE.
	if count, err := s.competencyRepo.CountBySubject(ctx, id); err != nil {
		s.log.Warn().Err(err).Int("subject_id", id).Msg("Could not count competencies before delete")
	} else if count > 0 {
		s.log.Info().Int("subject_id", id).Int("competencies", count).Msg("Deleting subject with competencies")
	}

	deleted, err := s.subjectRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("Subject", id)
	}

	s.log.Info().Int("subject_id", id).Msg("Subject deleted")
	publish(ctx, s.events, s.log, event.New(model.EntitySubject, model.ActionDeleted, id, 0, nil))
	return nil
}

// publish reports a change; delivery failures never fail the mutation.
func publish(ctx context.Context, events event.Publisher, log zerolog.Logger, ev model.ChangeEvent) {
	if err := events.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("event", ev.Type()).Int("entity_id", ev.EntityID).Msg("Failed to publish change event")
	}
}
