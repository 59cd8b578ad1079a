package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/stemsi/evaluation-backend/internal/apperr"
	"github.com/stemsi/evaluation-backend/internal/event"
	"github.com/stemsi/evaluation-backend/internal/model"
	"github.com/stemsi/evaluation-backend/internal/repository"
)

type CompetencyService interface {
	GetAllCompetencies(ctx context.Context) ([]model.Competency, error)
	GetCompetencyByID(ctx context.Context, id int) (*model.Competency, error)
	GetCompetenciesBySubject(ctx context.Context, subjectID int) ([]model.Competency, error)
	CountBySubject(ctx context.Context, subjectID int) (int, error)
	CreateCompetency(ctx context.Context, req *model.CreateCompetencyRequest) (*model.Competency, error)
	UpdateCompetency(ctx context.Context, id int, req *model.UpdateCompetencyRequest) (*model.Competency, error)
	DeleteCompetency(ctx context.Context, id int) error
}

type competencyService struct {
	competencyRepo repository.CompetencyRepository
	subjectRepo    repository.SubjectRepository
	events         event.Publisher
	log            zerolog.Logger
}

func NewCompetencyService(
	competencyRepo repository.CompetencyRepository,
	subjectRepo repository.SubjectRepository,
	events event.Publisher,
	log zerolog.Logger,
) CompetencyService {
	if events == nil {
		events = event.Nop{}
	}
	return &competencyService{
		competencyRepo: competencyRepo,
		subjectRepo:    subjectRepo,
		events:         events,
		log:            log.With().Str("component", "competency_service").Logger(),
	}
}

func (s *competencyService) GetAllCompetencies(ctx context.Context) ([]model.Competency, error) {
	return s.competencyRepo.FindAll(ctx)
}

func (s *competencyService) GetCompetencyByID(ctx context.Context, id int) (*model.Competency, error) {
	competency, err := s.competencyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if competency == nil {
		return nil, apperr.NotFound("Competency", id)
	}
	return competency, nil
}

func (s *competencyService) GetCompetenciesBySubject(ctx context.Context, subjectID int) ([]model.Competency, error) {
	if err := s.requireSubject(ctx, subjectID); err != nil {
		return nil, err
	}
	return s.competencyRepo.FindBySubject(ctx, subjectID)
}

func (s *competencyService) CountBySubject(ctx context.Context, subjectID int) (int, error) {
	if err := s.requireSubject(ctx, subjectID); err != nil {
		return 0, err
	}
	return s.competencyRepo.CountBySubject(ctx, subjectID)
}

func (s *competencyService) CreateCompetency(ctx context.Context, req *model.CreateCompetencyRequest) (*model.Competency, error) {
	if err := s.requireSubject(ctx, req.SubjectID); err != nil {
		return nil, err
	}

	existing, err := s.competencyRepo.FindBySubjectAndName(ctx, req.SubjectID, req.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict(apperr.ReasonDuplicateName, model.MsgCompetencyNameExists)
	}

	competency, err := s.competencyRepo.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int("competency_id", competency.ID).
		Int("subject_id", competency.SubjectID).
		Str("name", competency.Name).
		Msg("Competency created")
	publish(ctx, s.events, s.log, event.New(model.EntityCompetency, model.ActionCreated, competency.ID, competency.SubjectID, competency))
	return competency, nil
}

func (s *competencyService) UpdateCompetency(ctx context.Context, id int, req *model.UpdateCompetencyRequest) (*model.Competency, error) {
	current, err := s.GetCompetencyByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Names are unique per subject only.
	if req.Name != nil && *req.Name != current.Name {
		existing, err := s.competencyRepo.FindBySubjectAndName(ctx, current.SubjectID, *req.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, apperr.Conflict(apperr.ReasonDuplicateName, model.MsgCompetencyNameExists)
		}
	}

	competency, err := s.competencyRepo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if competency == nil {
		return nil, apperr.NotFound("Competency", id)
	}

	s.log.Info().Int("competency_id", id).Msg("Competency updated")
	publish(ctx, s.events, s.log, event.New(model.EntityCompetency, model.ActionUpdated, competency.ID, competency.SubjectID, competency))
	return competency, nil
}

func (s *competencyService) DeleteCompetency(ctx context.Context, id int) error {
	current, err := s.GetCompetencyByID(ctx, id)
	if err != nil {
		return err
	}

	deleted, err := s.competencyRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("Competency", id)
	}

	s.log.Info().Int("competency_id", id).Msg("Competency deleted")
	publish(ctx, s.events, s.log, event.New(model.EntityCompetency, model.ActionDeleted, id, current.SubjectID, nil))
	return nil
}

func (s *competencyService) requireSubject(ctx context.Context, subjectID int) error {
	exists, err := s.subjectRepo.Exists(ctx, subjectID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("Subject", subjectID)
	}
	return nil
}
