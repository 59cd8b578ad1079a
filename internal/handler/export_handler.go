package handler

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/evaluation-backend/internal/export"
	"github.com/stemsi/evaluation-backend/internal/service"
)

type ExportHandler struct {
	subjectService    service.SubjectService
	competencyService service.CompetencyService
	log               zerolog.Logger
}

func NewExportHandler(subjectService service.SubjectService, competencyService service.CompetencyService, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		subjectService:    subjectService,
		competencyService: competencyService,
		log:               log.With().Str("component", "export_handler").Logger(),
	}
}

// Workbook godoc
// GET /api/export
// Downloads every subject and competency as an XLSX workbook.
func (h *ExportHandler) Workbook(c *gin.Context) {
	ctx := c.Request.Context()

	subjects, err := h.subjectService.GetAllSubjects(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}
	competencies, err := h.competencyService.GetAllCompetencies(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}

	// Render fully before writing so a failure can still produce an error envelope.
	var buf bytes.Buffer
	if err := export.Write(&buf, subjects, competencies); err != nil {
		_ = c.Error(err)
		return
	}

	h.log.Info().
		Int("subjects", len(subjects)).
		Int("competencies", len(competencies)).
		Msg("Workbook exported")

	c.Header("Content-Disposition", `attachment; filename="`+export.FileName(time.Now())+`"`)
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}
