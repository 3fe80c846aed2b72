package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutorhub/tutorhub-api/internal/service"
	appErrors "github.com/tutorhub/tutorhub-api/pkg/errors"
	"github.com/tutorhub/tutorhub-api/pkg/response"
)

// SubjectHandler exposes the subject catalog and the per-user subject sets.
type SubjectHandler struct {
	service *service.SubjectService
}

// NewSubjectHandler creates a new handler.
func NewSubjectHandler(svc *service.SubjectService) *SubjectHandler {
	return &SubjectHandler{service: svc}
}

type subjectSetRequest struct {
	SubjectIDs []string `json:"subject_ids"`
}

// List godoc
// @Summary List subject catalog
// @Tags Subjects
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /subjects [get]
func (h *SubjectHandler) List(c *gin.Context) {
	subjects, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// GetMySubjects godoc
// @Summary List the caller's selected subjects
// @Tags Subjects
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /me/subjects [get]
func (h *SubjectHandler) GetMySubjects(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	subjects, err := h.service.GetMySubjects(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// SetMySubjects godoc
// @Summary Replace the caller's selected subjects
// @Tags Subjects
// @Accept json
// @Produce json
// @Param payload body subjectSetRequest true "Subject ids"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /me/subjects [put]
func (h *SubjectHandler) SetMySubjects(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req subjectSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid subject payload"))
		return
	}
	subjects, err := h.service.SetMySubjects(c.Request.Context(), claims, req.SubjectIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// GetTeachingSubjects godoc
// @Summary List the caller's teaching subjects
// @Tags Subjects
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /me/teaching-subjects [get]
func (h *SubjectHandler) GetTeachingSubjects(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	subjects, err := h.service.GetTeacherSubjects(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// SetTeachingSubjects godoc
// @Summary Replace the caller's teaching subjects
// @Tags Subjects
// @Accept json
// @Produce json
// @Param payload body subjectSetRequest true "Subject ids"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /me/teaching-subjects [put]
func (h *SubjectHandler) SetTeachingSubjects(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req subjectSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid subject payload"))
		return
	}
	subjects, err := h.service.SetTeacherSubjects(c.Request.Context(), claims, req.SubjectIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}
