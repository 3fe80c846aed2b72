package handler

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/tutorhub/tutorhub-api/internal/service"
	appErrors "github.com/tutorhub/tutorhub-api/pkg/errors"
	"github.com/tutorhub/tutorhub-api/pkg/response"
)

// HomeworkHandler exposes homework tasks and submissions.
type HomeworkHandler struct {
	service *service.HomeworkService
}

// NewHomeworkHandler creates a new handler.
func NewHomeworkHandler(svc *service.HomeworkService) *HomeworkHandler {
	return &HomeworkHandler{service: svc}
}

// CreateTask godoc
// @Summary Publish a homework task
// @Tags Homework
// @Accept json
// @Produce json
// @Param payload body service.CreateTaskRequest true "Task payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /tasks [post]
func (h *HomeworkHandler) CreateTask(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid task payload"))
		return
	}
	task, err := h.service.CreateTask(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, task)
}

// ListMyTasks godoc
// @Summary List tasks owned by the caller
// @Tags Homework
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /tasks [get]
func (h *HomeworkHandler) ListMyTasks(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	tasks, err := h.service.ListMyTasks(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tasks, nil)
}

// ListStudentTasks godoc
// @Summary List tasks for the caller's selected subjects
// @Description Tasks are annotated with the caller's latest submission
// @Tags Homework
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /me/tasks [get]
func (h *HomeworkHandler) ListStudentTasks(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	tasks, err := h.service.ListTasksForStudent(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tasks, nil)
}

// Submit godoc
// @Summary Upload a submission for a task
// @Tags Homework
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Task id"
// @Param file formData file true "Submission file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /tasks/{id}/submissions [post]
func (h *HomeworkHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	// A missing file part is reported by the service after the task and
	// lock checks, so keep going with a nil reader.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.service.MaxFileSize())
	var (
		filename string
		file     io.Reader
	)
	if fileHeader, err := c.FormFile("file"); err == nil {
		if fileHeader.Size > h.service.MaxFileSize() {
			response.Error(c, appErrors.NewValidation(map[string]string{
				"file": fmt.Sprintf("file exceeds the %d byte limit", h.service.MaxFileSize()),
			}))
			return
		}
		opened, err := fileHeader.Open()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
			return
		}
		defer opened.Close()
		filename = fileHeader.Filename
		file = opened
	}

	submission, err := h.service.Submit(c.Request.Context(), claims, c.Param("id"), filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, submission)
}

// ListTeacherSubmissions godoc
// @Summary List submissions across the caller's tasks
// @Tags Homework
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /submissions [get]
func (h *HomeworkHandler) ListTeacherSubmissions(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	submissions, err := h.service.ListSubmissionsForTeacher(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submissions, nil)
}

// ListTaskSubmissions godoc
// @Summary List submissions for one task
// @Tags Homework
// @Produce json
// @Param id path string true "Task id"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /tasks/{id}/submissions [get]
func (h *HomeworkHandler) ListTaskSubmissions(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	submissions, err := h.service.ListSubmissionsForTask(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submissions, nil)
}

// GiveFeedback godoc
// @Summary Record feedback on a submission
// @Description Optionally locks the submission; locking requires feedback text
// @Tags Homework
// @Accept json
// @Produce json
// @Param id path string true "Submission id"
// @Param payload body service.FeedbackRequest true "Feedback payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /submissions/{id}/feedback [post]
func (h *HomeworkHandler) GiveFeedback(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid feedback payload"))
		return
	}
	submission, err := h.service.GiveFeedback(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submission, nil)
}

// Download godoc
// @Summary Download a submission file
// @Tags Homework
// @Produce octet-stream
// @Param id path string true "Submission id"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /submissions/{id}/file [get]
func (h *HomeworkHandler) Download(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	detail, file, err := h.service.OpenSubmissionFile(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	filename := filepath.Base(detail.FilePath)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/octet-stream")
	http.ServeContent(c.Writer, c.Request, filename, detail.SubmittedAt, file)
}
