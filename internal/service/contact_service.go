package service

import (
	"strings"

	"github.com/koshapp/kosh-backend/internal/domain"
)

// ContactService handles contact-related business logic
type ContactService struct {
	contactRepo domain.ContactRepository
}

// NewContactService creates a new ContactService
func NewContactService(contactRepo domain.ContactRepository) *ContactService {
	return &ContactService{contactRepo: contactRepo}
}

// ContactInput holds the input for creating or updating a contact
type ContactInput struct {
	Name     string
	Email    *string
	Phone    *string
	Notes    *string
	IsActive *bool
}

// CreateContact creates a new contact with a settled balance
func (s *ContactService) CreateContact(scope domain.Scope, input ContactInput) (*domain.Contact, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}

	return s.contactRepo.Create(scope, &domain.Contact{
		UserID:   scope.UserID(),
		Name:     name,
		Email:    input.Email,
		Phone:    input.Phone,
		Notes:    input.Notes,
		IsActive: true,
	})
}

// GetContacts retrieves contacts with optional filters
func (s *ContactService) GetContacts(scope domain.Scope, filters *domain.ContactFilters) ([]*domain.Contact, error) {
	return s.contactRepo.List(scope, filters)
}

// GetContactByID retrieves a single contact
func (s *ContactService) GetContactByID(scope domain.Scope, id int32) (*domain.Contact, error) {
	return s.contactRepo.GetByID(scope, id)
}

// UpdateContact updates editable contact fields. Balance cannot be set
// directly; it only moves through debt transactions.
func (s *ContactService) UpdateContact(scope domain.Scope, id int32, input ContactInput) (*domain.Contact, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}

	contact, err := s.contactRepo.GetByID(scope, id)
	if err != nil {
		return nil, err
	}

	contact.Name = name
	contact.Email = input.Email
	contact.Phone = input.Phone
	contact.Notes = input.Notes
	if input.IsActive != nil {
		contact.IsActive = *input.IsActive
	}

	return s.contactRepo.Update(scope, contact)
}

// DeleteContact soft deletes a contact. Contacts with an unsettled balance
// cannot be deleted.
func (s *ContactService) DeleteContact(scope domain.Scope, id int32) error {
	contact, err := s.contactRepo.GetByID(scope, id)
	if err != nil {
		return err
	}
	if !contact.Settled() {
		return domain.ErrContactNotSettled
	}
	return s.contactRepo.SoftDelete(scope, id)
}

// GetSummary computes the debt rollup across all contacts
func (s *ContactService) GetSummary(scope domain.Scope) (*domain.DebtSummary, error) {
	return s.contactRepo.Summary(scope)
}
