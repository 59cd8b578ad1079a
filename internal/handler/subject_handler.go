package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/evaluation-backend/internal/model"
	"github.com/stemsi/evaluation-backend/internal/response"
	"github.com/stemsi/evaluation-backend/internal/service"
	"github.com/stemsi/evaluation-backend/internal/validator"
)

type SubjectHandler struct {
	subjectService service.SubjectService
}

func NewSubjectHandler(subjectService service.SubjectService) *SubjectHandler {
	return &SubjectHandler{subjectService: subjectService}
}

// GetAll godoc
// GET /api/subjects
func (h *SubjectHandler) GetAll(c *gin.Context) {
	subjects, err := h.subjectService.GetAllSubjects(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	if subjects == nil {
		subjects = []model.Subject{}
	}
	response.Success(c, http.StatusOK, "Subjects retrieved successfully", subjects)
}

// GetByID godoc
// GET /api/subjects/:id
func (h *SubjectHandler) GetByID(c *gin.Context) {
	id, err := validator.BindID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	subject, err := h.subjectService.GetSubjectByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Subject retrieved successfully", subject)
}

// Create godoc
// POST /api/subjects
func (h *SubjectHandler) Create(c *gin.Context) {
	var req model.CreateSubjectRequest
	if err := validator.Bind(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	subject, err := h.subjectService.CreateSubject(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Subject created successfully", subject)
}

// Update godoc
// PUT /api/subjects/:id
func (h *SubjectHandler) Update(c *gin.Context) {
	id, err := validator.BindID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req model.UpdateSubjectRequest
	if err := validator.Bind(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	subject, err := h.subjectService.UpdateSubject(c.Request.Context(), id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Subject updated successfully", subject)
}

// Delete godoc
// DELETE /api/subjects/:id
// Competencies of the subject are removed with it.
func (h *SubjectHandler) Delete(c *gin.Context) {
	id, err := validator.BindID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.subjectService.DeleteSubject(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Subject deleted successfully", nil)
}
