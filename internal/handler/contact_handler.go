package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/koshapp/kosh-backend/internal/domain"
	"github.com/koshapp/kosh-backend/internal/service"
	"github.com/koshapp/kosh-backend/internal/websocket"
)

// ContactHandler handles contact-related HTTP requests
type ContactHandler struct {
	contactService *service.ContactService
	publisher      websocket.EventPublisher
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(contactService *service.ContactService, publisher websocket.EventPublisher) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		publisher:      publisher,
	}
}

// ContactRequest represents the create/update contact request body
type ContactRequest struct {
	Name     string  `json:"name"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Notes    *string `json:"notes,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}

// ContactResponse represents a contact in API responses
type ContactResponse struct {
	ID            int32   `json:"id"`
	Name          string  `json:"name"`
	Email         *string `json:"email,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Balance       string  `json:"balance"`
	BalanceStatus string  `json:"balanceStatus"`
	Notes         *string `json:"notes,omitempty"`
	IsActive      bool    `json:"isActive"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

// DebtSummaryResponse represents the debt rollup
type DebtSummaryResponse struct {
	TotalOwedToYou string `json:"totalOwedToYou"`
	TotalYouOwe    string `json:"totalYouOwe"`
	NetPosition    string `json:"netPosition"`
	ContactsCount  int64  `json:"contactsCount"`
	SettledCount   int64  `json:"settledCount"`
}

// CreateContact godoc
// @Summary Create a contact
// @Tags contacts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ContactRequest true "Contact creation request"
// @Success 201 {object} ContactResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /contacts [post]
func (h *ContactHandler) CreateContact(c echo.Context) error {
	scope, ok := requestScope(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req ContactRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	contact, err := h.contactService.CreateContact(scope, service.ContactInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Notes: req.Notes,
	})
	if err != nil {
		if resp := nameValidationResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Msg("Failed to create contact")
		return NewInternalError(c, "Failed to create contact")
	}

	response := toContactResponse(contact)
	h.publisher.Publish(scope.UserID(), websocket.ContactCreated(response))
	log.Info().Int32("contact_id", contact.ID).Msg("Contact created")
	return c.JSON(http.StatusCreated, response)
}

// GetContacts godoc
// @Summary List contacts
// @Tags contacts
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by balance status (owes_you, you_owe, settled)"
// @Param active query bool false "Only active contacts"
// @Param search query string false "Search by name or email"
// @Success 200 {array} ContactResponse
// @Failure 401 {object} ProblemDetails
// @Router /contacts [get]
func (h *ContactHandler) GetContacts(c echo.Context) error {
	scope, ok := requestScope(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	filters := &domain.ContactFilters{
		Search: c.QueryParam("search"),
	}
	if s := c.QueryParam("status"); s != "" {
		status := domain.BalanceStatus(s)
		filters.Status = &status
	}
	filters.ActiveOnly = c.QueryParam("active") == "true"

	contacts, err := h.contactService.GetContacts(scope, filters)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list contacts")
		return NewInternalError(c, "Failed to list contacts")
	}

	resp := make([]ContactResponse, len(contacts))
	for i, contact := range contacts {
		resp[i] = toContactResponse(contact)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetContact godoc
// @Summary Get a contact
// @Tags contacts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contact ID"
// @Success 200 {object} ContactResponse
// @Failure 404 {object} ProblemDetails
// @Router /contacts/{id} [get]
func (h *ContactHandler) GetContact(c echo.Context) error {
	scope, ok := requestScope(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := pathID(c)
	if err != nil {
		return NewValidationError(c, "Invalid contact ID", nil)
	}

	contact, err := h.contactService.GetContactByID(scope, id)
	if err != nil {
		if errors.Is(err, domain.ErrContactNotFound) {
			return NewNotFoundError(c, "Contact not found")
		}
		log.Error().Err(err).Int32("contact_id", id).Msg("Failed to load contact")
		return NewInternalError(c, "Failed to load contact")
	}

	return c.JSON(http.StatusOK, toContactResponse(contact))
}

// UpdateContact godoc
// @Summary Update a contact
// @Tags contacts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contact ID"
// @Param request body ContactRequest true "Contact update request"
// @Success 200 {object} ContactResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /contacts/{id} [put]
func (h *ContactHandler) UpdateContact(c echo.Context) error {
	scope, ok := requestScope(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := pathID(c)
	if err != nil {
		return NewValidationError(c, "Invalid contact ID", nil)
	}

	var req ContactRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	contact, err := h.contactService.UpdateContact(scope, id, service.ContactInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Notes:    req.Notes,
		IsActive: req.IsActive,
	})
	if err != nil {
		if errors.Is(err, domain.ErrContactNotFound) {
			return NewNotFoundError(c, "Contact not found")
		}
		if resp := nameValidationResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("contact_id", id).Msg("Failed to update contact")
		return NewInternalError(c, "Failed to update contact")
	}

	response := toContactResponse(contact)
	h.publisher.Publish(scope.UserID(), websocket.ContactUpdated(response))
	log.Info().Int32("contact_id", id).Msg("Contact updated")
	return c.JSON(http.StatusOK, response)
}

// DeleteContact godoc
// @Summary Delete a contact
// @Description Soft deletes a contact. Rejected while the contact's balance is unsettled.
// @Tags contacts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contact ID"
// @Success 204
// @Failure 404 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /contacts/{id} [delete]
func (h *ContactHandler) DeleteContact(c echo.Context) error {
	scope, ok := requestScope(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := pathID(c)
	if err != nil {
		return NewValidationError(c, "Invalid contact ID", nil)
	}

	if err := h.contactService.DeleteContact(scope, id); err != nil {
		if errors.Is(err, domain.ErrContactNotFound) {
			return NewNotFoundError(c, "Contact not found")
		}
		if errors.Is(err, domain.ErrContactNotSettled) {
			return NewConflictError(c, "Contact has an unsettled balance")
		}
		log.Error().Err(err).Int32("contact_id", id).Msg("Failed to delete contact")
		return NewInternalError(c, "Failed to delete contact")
	}

	h.publisher.Publish(scope.UserID(), websocket.ContactDeleted(map[string]int32{"id": id}))
	log.Info().Int32("contact_id", id).Msg("Contact deleted")
	return c.NoContent(http.StatusNoContent)
}

// GetSummary godoc
// @Summary Get the debt summary
// @Tags contacts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} DebtSummaryResponse
// @Failure 401 {object} ProblemDetails
// @Router /contacts-summary [get]
func (h *ContactHandler) GetSummary(c echo.Context) error {
	scope, ok := requestScope(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	summary, err := h.contactService.GetSummary(scope)
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute debt summary")
		return NewInternalError(c, "Failed to compute summary")
	}

	return c.JSON(http.StatusOK, DebtSummaryResponse{
		TotalOwedToYou: summary.TotalOwedToYou.String(),
		TotalYouOwe:    summary.TotalYouOwe.String(),
		NetPosition:    summary.NetPosition.String(),
		ContactsCount:  summary.ContactsCount,
		SettledCount:   summary.SettledCount,
	})
}

func nameValidationResponse(c echo.Context, err error) error {
	if errors.Is(err, domain.ErrNameRequired) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name is required"},
		})
	}
	if errors.Is(err, domain.ErrNameTooLong) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name must be 255 characters or less"},
		})
	}
	return nil
}

func toContactResponse(contact *domain.Contact) ContactResponse {
	return ContactResponse{
		ID:            contact.ID,
		Name:          contact.Name,
		Email:         contact.Email,
		Phone:         contact.Phone,
		Balance:       contact.Balance.String(),
		BalanceStatus: string(contact.Status()),
		Notes:         contact.Notes,
		IsActive:      contact.IsActive,
		CreatedAt:     contact.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     contact.UpdatedAt.Format(time.RFC3339),
	}
}
