package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/koshapp/kosh-backend/internal/domain"
	"github.com/koshapp/kosh-backend/internal/service"
	"github.com/koshapp/kosh-backend/internal/testutil"
)

type contactHandlerEnv struct {
	handler     *ContactHandler
	contactRepo *testutil.MockContactRepository
	publisher   *capturingPublisher
}

func newContactHandlerEnv() *contactHandlerEnv {
	contactRepo := testutil.NewMockContactRepository()
	contactService := service.NewContactService(contactRepo)
	publisher := &capturingPublisher{}
	return &contactHandlerEnv{
		handler:     NewContactHandler(contactService, publisher),
		contactRepo: contactRepo,
		publisher:   publisher,
	}
}

func TestCreateContact_Success(t *testing.T) {
	e := echo.New()
	env := newContactHandlerEnv()

	reqBody := `{"name": "Ravi", "email": "ravi@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contacts", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setAuthContext(c, 1)

	if err := env.handler.CreateContact(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response ContactResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Name != "Ravi" {
		t.Errorf("Expected name 'Ravi', got %s", response.Name)
	}
	if response.BalanceStatus != "settled" {
		t.Errorf("Expected new contact to start settled, got %s", response.BalanceStatus)
	}

	if len(env.publisher.events) != 1 {
		t.Fatalf("Expected 1 published event, got %d", len(env.publisher.events))
	}
	if env.publisher.events[0].Type != "contact.created" {
		t.Errorf("Expected event type 'contact.created', got %s", env.publisher.events[0].Type)
	}
}

func TestCreateContact_Unauthenticated(t *testing.T) {
	e := echo.New()
	env := newContactHandlerEnv()

	reqBody := `{"name": "Ravi"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contacts", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := env.handler.CreateContact(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
	if len(env.publisher.events) != 0 {
		t.Errorf("Expected no published events, got %d", len(env.publisher.events))
	}
}

func TestUpdateContact_PublishesEvent(t *testing.T) {
	e := echo.New()
	env := newContactHandlerEnv()

	env.contactRepo.AddContact(&domain.Contact{ID: 1, UserID: 3, Name: "Ravi", IsActive: true})

	reqBody := `{"name": "Ravi Kumar"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/contacts/1", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	setAuthContext(c, 3)

	if err := env.handler.UpdateContact(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if len(env.publisher.events) != 1 {
		t.Fatalf("Expected 1 published event, got %d", len(env.publisher.events))
	}
	if env.publisher.events[0].Type != "contact.updated" {
		t.Errorf("Expected event type 'contact.updated', got %s", env.publisher.events[0].Type)
	}
	if env.publisher.userIDs[0] != 3 {
		t.Errorf("Expected event published to user 3, got %d", env.publisher.userIDs[0])
	}
}

func TestDeleteContact_Unsettled(t *testing.T) {
	e := echo.New()
	env := newContactHandlerEnv()

	env.contactRepo.AddContact(&domain.Contact{
		ID: 1, UserID: 1, Name: "Ravi",
		Balance: decimal.NewFromInt(300), IsActive: true,
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/contacts/1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	setAuthContext(c, 1)

	if err := env.handler.DeleteContact(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}
	if len(env.publisher.events) != 0 {
		t.Errorf("Expected no published events on conflict, got %d", len(env.publisher.events))
	}
}

func TestDeleteContact_PublishesEvent(t *testing.T) {
	e := echo.New()
	env := newContactHandlerEnv()

	env.contactRepo.AddContact(&domain.Contact{ID: 1, UserID: 1, Name: "Ravi", IsActive: true})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/contacts/1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	setAuthContext(c, 1)

	if err := env.handler.DeleteContact(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", rec.Code)
	}

	if len(env.publisher.events) != 1 {
		t.Fatalf("Expected 1 published event, got %d", len(env.publisher.events))
	}
	if env.publisher.events[0].Type != "contact.deleted" {
		t.Errorf("Expected event type 'contact.deleted', got %s", env.publisher.events[0].Type)
	}
}
