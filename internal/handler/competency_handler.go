package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/evaluation-backend/internal/model"
	"github.com/stemsi/evaluation-backend/internal/response"
	"github.com/stemsi/evaluation-backend/internal/service"
	"github.com/stemsi/evaluation-backend/internal/validator"
)

type CompetencyHandler struct {
	competencyService service.CompetencyService
}

func NewCompetencyHandler(competencyService service.CompetencyService) *CompetencyHandler {
	return &CompetencyHandler{competencyService: competencyService}
}

// GetAll godoc
// GET /api/competencies
func (h *CompetencyHandler) GetAll(c *gin.Context) {
	competencies, err := h.competencyService.GetAllCompetencies(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	if competencies == nil {
		competencies = []model.Competency{}
	}
	response.Success(c, http.StatusOK, "Competencies retrieved successfully", competencies)
}

// GetBySubject godoc
// GET /api/competencies/subject/:subjectId
// GET /api/subjects/:id/competencies
func (h *CompetencyHandler) GetBySubject(c *gin.Context) {
	param := "subjectId"
	if c.Param(param) == "" {
		param = "id"
	}
	subjectID, err := validator.BindID(c, param)
	if err != nil {
		_ = c.Error(err)
		return
	}

	competencies, err := h.competencyService.GetCompetenciesBySubject(c.Request.Context(), subjectID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if competencies == nil {
		competencies = []model.Competency{}
	}
	response.Success(c, http.StatusOK, "Competencies retrieved successfully", competencies)
}

// GetByID godoc
// GET /api/competencies/:id
func (h *CompetencyHandler) GetByID(c *gin.Context) {
	id, err := validator.BindID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	competency, err := h.competencyService.GetCompetencyByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Competency retrieved successfully", competency)
}

// Create godoc
// POST /api/competencies
func (h *CompetencyHandler) Create(c *gin.Context) {
	var req model.CreateCompetencyRequest
	if err := validator.Bind(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	competency, err := h.competencyService.CreateCompetency(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Competency created successfully", competency)
}

// Update godoc
// PUT /api/competencies/:id
func (h *CompetencyHandler) Update(c *gin.Context) {
	id, err := validator.BindID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req model.UpdateCompetencyRequest
	if err := validator.Bind(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	competency, err := h.competencyService.UpdateCompetency(c.Request.Context(), id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Competency updated successfully", competency)
}

// Delete godoc
// DELETE /api/competencies/:id
func (h *CompetencyHandler) Delete(c *gin.Context) {
	id, err := validator.BindID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.competencyService.DeleteCompetency(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Competency deleted successfully", nil)
}
