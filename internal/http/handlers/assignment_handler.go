package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jamiljuma2/assignhub-backend/internal/dto"
	"github.com/jamiljuma2/assignhub-backend/internal/http/handlers/common"
	"github.com/jamiljuma2/assignhub-backend/internal/service"
)

type AssignmentHandler struct {
	assignments *service.AssignmentService
}

func NewAssignmentHandler(assignments *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

// Create POST /assignments
func (h *AssignmentHandler) Create(c *gin.Context) {
	studentID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CreateAssignmentRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	fileIDs, err := common.ParseUUIDList(req.Attachments)
	if err != nil {
		common.RespondBadRequest(c, "неверный формат attachment_ids")
		return
	}

	assignment, err := h.assignments.Create(c.Request.Context(), studentID, service.CreateAssignmentInput{
		Title:       req.Title,
		Description: req.Description,
		Budget:      req.Budget,
		Deadline:    req.Deadline,
		FileIDs:     fileIDs,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, assignment)
}

// Get GET /assignments/:id
func (h *AssignmentHandler) Get(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	assignment, err := h.assignments.Get(c.Request.Context(), id, userID, role)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// ListMy GET /assignments/my
func (h *AssignmentHandler) ListMy(c *gin.Context) {
	studentID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	assignments, err := h.assignments.ListMy(c.Request.Context(), studentID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{Items: assignments, Limit: limit, Offset: offset})
}

// ListPending GET /admin/assignments/pending
func (h *AssignmentHandler) ListPending(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	assignments, err := h.assignments.ListPending(c.Request.Context(), limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{Items: assignments, Limit: limit, Offset: offset})
}

// Approve POST /admin/assignments/:id/approve
func (h *AssignmentHandler) Approve(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	assignment, task, err := h.assignments.Approve(c.Request.Context(), id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"assignment": assignment, "task": task})
}

// Reject POST /admin/assignments/:id/reject
func (h *AssignmentHandler) Reject(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.RejectRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	assignment, err := h.assignments.Reject(c.Request.Context(), id, req.Reason)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}
