package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/evaluation-backend/internal/apperr"
	"github.com/stemsi/evaluation-backend/internal/model"
)

// SubjectRepository is the only place subjects are read from or written to storage.
// Lookups return (nil, nil) when the row does not exist.
type SubjectRepository interface {
	FindAll(ctx context.Context) ([]model.Subject, error)
	FindByID(ctx context.Context, id int) (*model.Subject, error)
	FindByName(ctx context.Context, name string) (*model.Subject, error)
	Exists(ctx context.Context, id int) (bool, error)
	Create(ctx context.Context, req *model.CreateSubjectRequest) (*model.Subject, error)
	Update(ctx context.Context, id int, req *model.UpdateSubjectRequest) (*model.Subject, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type subjectRepository struct {
	db  DBTX
	log zerolog.Logger
}

func NewSubjectRepository(db DBTX, log zerolog.Logger) SubjectRepository {
	return &subjectRepository{
		db:  db,
		log: log.With().Str("component", "subject_repository").Logger(),
	}
}

const subjectColumns = `id, name, description, created_at, updated_at`

func scanSubject(row scanner) (*model.Subject, error) {
	s := &model.Subject{}
	if err := row.Scan(&s.ID, &s.Name, &s.Description, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *subjectRepository) FindAll(ctx context.Context) ([]model.Subject, error) {
	rows, err := r.db.Query(ctx, `SELECT `+subjectColumns+` FROM subjects ORDER BY created_at DESC, id DESC`)
	if err != nil {
		r.log.Error().Err(err).Msg("Error retrieving subjects")
		return nil, apperr.Storage("retrieve subjects", err)
	}
	defer rows.Close()

	subjects := []model.Subject{}
	for rows.Next() {
		s, err := scanSubject(rows)
		if err != nil {
			return nil, apperr.Storage("retrieve subjects", err)
		}
		subjects = append(subjects, *s)
	}
	if err := rows.Err(); err != nil {
		r.log.Error().Err(err).Msg("Error retrieving subjects")
		return nil, apperr.Storage("retrieve subjects", err)
	}

	r.log.Debug().Int("count", len(subjects)).Msg("Retrieved all subjects")
	return subjects, nil
}

func (r *subjectRepository) FindByID(ctx context.Context, id int) (*model.Subject, error) {
	s, err := scanSubject(r.db.QueryRow(ctx, `SELECT `+subjectColumns+` FROM subjects WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			r.log.Debug().Int("subject_id", id).Msg("Subject not found")
			return nil, nil
		}
		r.log.Error().Err(err).Int("subject_id", id).Msg("Error retrieving subject by ID")
		return nil, apperr.Storage("retrieve subject", err)
	}
	return s, nil
}

func (r *subjectRepository) FindByName(ctx context.Context, name string) (*model.Subject, error) {
	s, err := scanSubject(r.db.QueryRow(ctx, `SELECT `+subjectColumns+` FROM subjects WHERE name = $1`, name))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		r.log.Error().Err(err).Str("name", name).Msg("Error retrieving subject by name")
		return nil, apperr.Storage("retrieve subject", err)
	}
	return s, nil
}

func (r *subjectRepository) Exists(ctx context.Context, id int) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM subjects WHERE id = $1)`, id).Scan(&exists); err != nil {
		r.log.Error().Err(err).Int("subject_id", id).Msg("Error checking subject existence")
		return false, apperr.Storage("check subject existence", err)
	}
	return exists, nil
}

func (r *subjectRepository) Create(ctx context.Context, req *model.CreateSubjectRequest) (*model.Subject, error) {
	var id int
	err := r.db.QueryRow(ctx,
		`INSERT INTO subjects (name, description) VALUES ($1, $2) RETURNING id`,
		req.Name, nullableText(req.Description),
	).Scan(&id)
	if err != nil {
		err = translateError("create subject", err, model.MsgSubjectNameExists)
		if apperr.IsKind(err, apperr.KindConflict) {
			r.log.Warn().Str("name", req.Name).Msg("Attempted to create duplicate subject")
		} else {
			r.log.Error().Err(err).Str("name", req.Name).Msg("Error creating subject")
		}
		return nil, err
	}

	created, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, apperr.Storage("retrieve created subject", nil)
	}

	r.log.Info().Int("subject_id", id).Str("name", req.Name).Msg("Subject created successfully")
	return created, nil
}

func (r *subjectRepository) Update(ctx context.Context, id int, req *model.UpdateSubjectRequest) (*model.Subject, error) {
	var (
		sets []string
		args []any
	)
	if req.Name != nil {
		args = append(args, *req.Name)
		sets = append(sets, "name = $"+strconv.Itoa(len(args)))
	}
	if req.Description != nil {
		args = append(args, nullableText(req.Description))
		sets = append(sets, "description = $"+strconv.Itoa(len(args)))
	}

	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}

	args = append(args, id)
	query := `UPDATE subjects SET ` + strings.Join(sets, ", ") +
		`, updated_at = NOW() WHERE id = $` + strconv.Itoa(len(args))

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		err = translateError("update subject", err, model.MsgSubjectNameExists)
		if apperr.IsKind(err, apperr.KindConflict) {
			r.log.Warn().Int("subject_id", id).Msg("Attempted to update subject with duplicate name")
		} else {
			r.log.Error().Err(err).Int("subject_id", id).Msg("Error updating subject")
		}
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		r.log.Debug().Int("subject_id", id).Msg("No subject found to update")
		return nil, nil
	}

	r.log.Info().Int("subject_id", id).Msg("Subject updated successfully")
	return r.FindByID(ctx, id)
}

func (r *subjectRepository) Delete(ctx context.Context, id int) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		r.log.Error().Err(err).Int("subject_id", id).Msg("Error deleting subject")
		return false, apperr.Storage("delete subject", err)
	}

	deleted := tag.RowsAffected() > 0
	if deleted {
		r.log.Info().Int("subject_id", id).Msg("Subject deleted successfully")
	} else {
		r.log.Debug().Int("subject_id", id).Msg("No subject found to delete")
	}
	return deleted, nil
}

// nullableText stores empty descriptions as NULL.
func nullableText(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
