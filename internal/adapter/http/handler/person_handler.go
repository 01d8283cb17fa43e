package handler

import (
	"moneytracker/internal/adapter/http/dto"
	"moneytracker/internal/core/ports"
	"moneytracker/pkg/apperror"
	"moneytracker/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PersonHandler handles counterparty endpoints.
type PersonHandler struct {
	personSvc ports.PersonService
}

// NewPersonHandler creates a new PersonHandler.
func NewPersonHandler(personSvc ports.PersonService) *PersonHandler {
	return &PersonHandler{personSvc: personSvc}
}

// Create handles POST /api/v1/people.
func (h *PersonHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.CreatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	summary, err := h.personSvc.CreatePerson(c.Request.Context(), userID, ports.CreatePersonRequest{
		Name:  req.Name,
		Phone: req.Phone,
		Notes: req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toPersonResponse(summary))
}

// List handles GET /api/v1/people.
func (h *PersonHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	summaries, err := h.personSvc.ListPeople(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := make([]dto.PersonResponse, 0, len(summaries))
	for i := range summaries {
		resp = append(resp, toPersonResponse(&summaries[i]))
	}
	response.OK(c, resp)
}

// Get handles GET /api/v1/people/:id.
func (h *PersonHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	personID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid person id"))
		return
	}

	summary, err := h.personSvc.GetPerson(c.Request.Context(), userID, personID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toPersonResponse(summary))
}

// Delete handles DELETE /api/v1/people/:id.
func (h *PersonHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	personID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid person id"))
		return
	}

	if err := h.personSvc.DeletePerson(c.Request.Context(), userID, personID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

func toPersonResponse(s *ports.PersonSummary) dto.PersonResponse {
	return dto.PersonResponse{
		ID:            s.Person.ID.String(),
		Name:          s.Person.Name,
		Phone:         s.Person.Phone,
		Notes:         s.Person.Notes,
		TotalReceived: s.TotalReceived,
		TotalGiven:    s.TotalGiven,
		NetBalance:    s.NetBalance,
		Status:        string(s.Status),
		CreatedAt:     s.Person.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
