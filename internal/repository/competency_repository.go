package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/evaluation-backend/internal/apperr"
	"github.com/stemsi/evaluation-backend/internal/model"
)

// CompetencyRepository is the only place competencies are read from or
// written to storage. Lookups return (nil, nil) when the row does not exist.
type CompetencyRepository interface {
	FindAll(ctx context.Context) ([]model.Competency, error)
	FindByID(ctx context.Context, id int) (*model.Competency, error)
	FindBySubject(ctx context.Context, subjectID int) ([]model.Competency, error)
	FindBySubjectAndName(ctx context.Context, subjectID int, name string) (*model.Competency, error)
	CountBySubject(ctx context.Context, subjectID int) (int, error)
	Create(ctx context.Context, req *model.CreateCompetencyRequest) (*model.Competency, error)
	Update(ctx context.Context, id int, req *model.UpdateCompetencyRequest) (*model.Competency, error)
	Delete(ctx context.Context, id int) (bool, error)
	DeleteBySubject(ctx context.Context, subjectID int) (int64, error)
}

type competencyRepository struct {
	db  DBTX
	log zerolog.Logger
}

func NewCompetencyRepository(db DBTX, log zerolog.Logger) CompetencyRepository {
	return &competencyRepository{
		db:  db,
		log: log.With().Str("component", "competency_repository").Logger(),
	}
}

const competencyColumns = `id, subject_id, name, marks, created_at, updated_at`

func scanCompetency(row scanner) (*model.Competency, error) {
	c := &model.Competency{}
	if err := row.Scan(&c.ID, &c.SubjectID, &c.Name, &c.Marks, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *competencyRepository) list(ctx context.Context, op, query string, args ...any) ([]model.Competency, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	defer rows.Close()

	competencies := []model.Competency{}
	for rows.Next() {
		c, err := scanCompetency(rows)
		if err != nil {
			return nil, apperr.Storage(op, err)
		}
		competencies = append(competencies, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage(op, err)
	}
	return competencies, nil
}

func (r *competencyRepository) FindAll(ctx context.Context) ([]model.Competency, error) {
	competencies, err := r.list(ctx, "retrieve competencies",
		`SELECT `+competencyColumns+` FROM competencies ORDER BY created_at DESC, id DESC`)
	if err != nil {
		r.log.Error().Err(err).Msg("Error retrieving competencies")
		return nil, err
	}

	r.log.Debug().Int("count", len(competencies)).Msg("Retrieved all competencies")
	return competencies, nil
}

func (r *competencyRepository) FindBySubject(ctx context.Context, subjectID int) ([]model.Competency, error) {
	competencies, err := r.list(ctx, "retrieve competencies",
		`SELECT `+competencyColumns+` FROM competencies WHERE subject_id = $1 ORDER BY marks DESC, name ASC`,
		subjectID)
	if err != nil {
		r.log.Error().Err(err).Int("subject_id", subjectID).Msg("Error retrieving competencies by subject ID")
		return nil, err
	}

	r.log.Debug().Int("subject_id", subjectID).Int("count", len(competencies)).Msg("Retrieved competencies by subject ID")
	return competencies, nil
}

func (r *competencyRepository) FindByID(ctx context.Context, id int) (*model.Competency, error) {
	c, err := scanCompetency(r.db.QueryRow(ctx, `SELECT `+competencyColumns+` FROM competencies WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			r.log.Debug().Int("competency_id", id).Msg("Competency not found")
			return nil, nil
		}
		r.log.Error().Err(err).Int("competency_id", id).Msg("Error retrieving competency by ID")
		return nil, apperr.Storage("retrieve competency", err)
	}
	return c, nil
}

func (r *competencyRepository) FindBySubjectAndName(ctx context.Context, subjectID int, name string) (*model.Competency, error) {
	c, err := scanCompetency(r.db.QueryRow(ctx,
		`SELECT `+competencyColumns+` FROM competencies WHERE subject_id = $1 AND name = $2`,
		subjectID, name))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		r.log.Error().Err(err).Int("subject_id", subjectID).Str("name", name).Msg("Error retrieving competency by subject and name")
		return nil, apperr.Storage("retrieve competency", err)
	}
	return c, nil
}

func (r *competencyRepository) CountBySubject(ctx context.Context, subjectID int) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM competencies WHERE subject_id = $1`, subjectID).Scan(&n); err != nil {
		r.log.Error().Err(err).Int("subject_id", subjectID).Msg("Error counting competencies")
		return 0, apperr.Storage("count competencies", err)
	}
	return n, nil
}

func (r *competencyRepository) Create(ctx context.Context, req *model.CreateCompetencyRequest) (*model.Competency, error) {
	var id int
	err := r.db.QueryRow(ctx,
		`INSERT INTO competencies (subject_id, name, marks) VALUES ($1, $2, $3) RETURNING id`,
		req.SubjectID, req.Name, *req.Marks,
	).Scan(&id)
	if err != nil {
		err = translateError("create competency", err, model.MsgCompetencyNameExists)
		if e, ok := apperr.As(err); ok && e.Kind == apperr.KindConflict {
			r.log.Warn().
				Int("subject_id", req.SubjectID).
				Str("name", req.Name).
				Str("reason", string(e.Reason)).
				Msg("Competency insert rejected by constraint")
		} else {
			r.log.Error().Err(err).Int("subject_id", req.SubjectID).Msg("Error creating competency")
		}
		return nil, err
	}

	created, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, apperr.Storage("retrieve created competency", nil)
	}

	r.log.Info().
		Int("competency_id", id).
		Int("subject_id", req.SubjectID).
		Str("name", req.Name).
		Msg("Competency created successfully")
	return created, nil
}

func (r *competencyRepository) Update(ctx context.Context, id int, req *model.UpdateCompetencyRequest) (*model.Competency, error) {
	var (
		sets []string
		args []any
	)
	if req.Name != nil {
		args = append(args, *req.Name)
		sets = append(sets, "name = $"+strconv.Itoa(len(args)))
	}
	if req.Marks != nil {
		args = append(args, *req.Marks)
		sets = append(sets, "marks = $"+strconv.Itoa(len(args)))
	}

	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}

	args = append(args, id)
	query := `UPDATE competencies SET ` + strings.Join(sets, ", ") +
		`, updated_at = NOW() WHERE id = $` + strconv.Itoa(len(args))

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		err = translateError("update competency", err, model.MsgCompetencyNameExists)
		if apperr.IsKind(err, apperr.KindConflict) {
			r.log.Warn().Int("competency_id", id).Msg("Attempted to update competency with duplicate name")
		} else {
			r.log.Error().Err(err).Int("competency_id", id).Msg("Error updating competency")
		}
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		r.log.Debug().Int("competency_id", id).Msg("No competency found to update")
		return nil, nil
	}

	r.log.Info().Int("competency_id", id).Msg("Competency updated successfully")
	return r.FindByID(ctx, id)
}

func (r *competencyRepository) Delete(ctx context.Context, id int) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM competencies WHERE id = $1`, id)
	if err != nil {
		r.log.Error().Err(err).Int("competency_id", id).Msg("Error deleting competency")
		return false, apperr.Storage("delete competency", err)
	}

	deleted := tag.RowsAffected() > 0
	if deleted {
		r.log.Info().Int("competency_id", id).Msg("Competency deleted successfully")
	} else {
		r.log.Debug().Int("competency_id", id).Msg("No competency found to delete")
	}
	return deleted, nil
}

func (r *competencyRepository) DeleteBySubject(ctx context.Context, subjectID int) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM competencies WHERE subject_id = $1`, subjectID)
	if err != nil {
		r.log.Error().Err(err).Int("subject_id", subjectID).Msg("Error deleting competencies by subject ID")
		return 0, apperr.Storage("delete competencies", err)
	}

	r.log.Info().Int("subject_id", subjectID).Int64("deleted_count", tag.RowsAffected()).Msg("Competencies deleted by subject ID")
	return tag.RowsAffected(), nil
}
