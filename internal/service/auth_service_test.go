package service

import (
	"testing"
	"time"

	"github.com/koshapp/kosh-backend/internal/domain"
	"github.com/koshapp/kosh-backend/internal/testutil"
)

func newAuthTestService() (*AuthService, *testutil.MockUserRepository, *testutil.MockSessionRepository) {
	userRepo := testutil.NewMockUserRepository()
	sessionRepo := testutil.NewMockSessionRepository()
	svc := NewAuthService(userRepo, sessionRepo, []byte("test-secret"), time.Hour, 24*time.Hour)
	return svc, userRepo, sessionRepo
}

func TestRegister_Success(t *testing.T) {
	svc, _, _ := newAuthTestService()

	user, err := svc.Register(RegisterInput{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if user.PasswordHash == "correct horse" {
		t.Error("Expected password to be hashed, got plaintext")
	}
	if user.Currency != "INR" {
		t.Errorf("Expected default currency 'INR', got %s", user.Currency)
	}
	if user.Timezone != "Asia/Kolkata" {
		t.Errorf("Expected default timezone 'Asia/Kolkata', got %s", user.Timezone)
	}
	if !user.IsActive {
		t.Error("Expected new user to be active")
	}
}

func TestRegister_NormalizesEmail(t *testing.T) {
	svc, _, _ := newAuthTestService()

	user, err := svc.Register(RegisterInput{
		Name:     "Asha",
		Email:    "  Asha@Example.COM ",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if user.Email != "asha@example.com" {
		t.Errorf("Expected normalized email, got %s", user.Email)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthTestService()

	input := RegisterInput{Name: "Asha", Email: "asha@example.com", Password: "correct horse"}
	if _, err := svc.Register(input); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	_, err := svc.Register(input)
	if err != domain.ErrEmailTaken {
		t.Errorf("Expected ErrEmailTaken, got %v", err)
	}
}

func TestRegister_ShortPassword(t *testing.T) {
	svc, _, _ := newAuthTestService()

	_, err := svc.Register(RegisterInput{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "short",
	})
	if err != domain.ErrPasswordTooShort {
		t.Errorf("Expected ErrPasswordTooShort, got %v", err)
	}
}

func TestRegister_EmptyName(t *testing.T) {
	svc, _, _ := newAuthTestService()

	_, err := svc.Register(RegisterInput{
		Name:     "   ",
		Email:    "asha@example.com",
		Password: "correct horse",
	})
	if err != domain.ErrNameRequired {
		t.Errorf("Expected ErrNameRequired, got %v", err)
	}
}

func TestLogin_TokenMode(t *testing.T) {
	svc, _, _ := newAuthTestService()

	user, err := svc.Register(RegisterInput{Name: "Asha", Email: "asha@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	result, err := svc.Login(LoginInput{Email: "asha@example.com", Password: "correct horse", Mode: AuthModeToken})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Token == "" {
		t.Fatal("Expected a token in token mode")
	}
	if result.Session != nil {
		t.Error("Expected no session in token mode")
	}

	userID, err := svc.VerifyToken(result.Token)
	if err != nil {
		t.Fatalf("Expected token to verify, got %v", err)
	}
	if userID != user.ID {
		t.Errorf("Expected user ID %d from token, got %d", user.ID, userID)
	}

	if result.User.LastLoginAt == nil {
		t.Error("Expected last login timestamp to be set")
	}
}

func TestLogin_SessionMode(t *testing.T) {
	svc, _, _ := newAuthTestService()

	user, err := svc.Register(RegisterInput{Name: "Asha", Email: "asha@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	result, err := svc.Login(LoginInput{Email: "asha@example.com", Password: "correct horse", Mode: AuthModeSession})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Session == nil {
		t.Fatal("Expected a session in session mode")
	}
	if result.Token != "" {
		t.Error("Expected no token in session mode")
	}

	userID, err := svc.VerifySession(result.Session.ID)
	if err != nil {
		t.Fatalf("Expected session to verify, got %v", err)
	}
	if userID != user.ID {
		t.Errorf("Expected user ID %d from session, got %d", user.ID, userID)
	}
}

func TestLogin_InvalidMode(t *testing.T) {
	svc, _, _ := newAuthTestService()

	_, err := svc.Login(LoginInput{Email: "asha@example.com", Password: "correct horse", Mode: "basic"})
	if err != domain.ErrInvalidAuthMode {
		t.Errorf("Expected ErrInvalidAuthMode, got %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _, _ := newAuthTestService()

	if _, err := svc.Register(RegisterInput{Name: "Asha", Email: "asha@example.com", Password: "correct horse"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	_, err := svc.Login(LoginInput{Email: "asha@example.com", Password: "wrong horse", Mode: AuthModeToken})
	if err != domain.ErrInvalidCredentials {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _, _ := newAuthTestService()

	_, err := svc.Login(LoginInput{Email: "nobody@example.com", Password: "correct horse", Mode: AuthModeToken})
	if err != domain.ErrInvalidCredentials {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_DeactivatedUser(t *testing.T) {
	svc, userRepo, _ := newAuthTestService()

	user, err := svc.Register(RegisterInput{Name: "Asha", Email: "asha@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	userRepo.Users[user.ID].IsActive = false

	_, err = svc.Login(LoginInput{Email: "asha@example.com", Password: "correct horse", Mode: AuthModeToken})
	if err != domain.ErrUserDeactivated {
		t.Errorf("Expected ErrUserDeactivated, got %v", err)
	}
}

func TestLogout_RevokesSession(t *testing.T) {
	svc, _, _ := newAuthTestService()

	if _, err := svc.Register(RegisterInput{Name: "Asha", Email: "asha@example.com", Password: "correct horse"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	result, err := svc.Login(LoginInput{Email: "asha@example.com", Password: "correct horse", Mode: AuthModeSession})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := svc.Logout(result.Session.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, err := svc.VerifySession(result.Session.ID); err != domain.ErrSessionExpired {
		t.Errorf("Expected ErrSessionExpired after logout, got %v", err)
	}
}

func TestLogoutAll_RevokesEverySession(t *testing.T) {
	svc, _, _ := newAuthTestService()

	user, err := svc.Register(RegisterInput{Name: "Asha", Email: "asha@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	first, err := svc.Login(LoginInput{Email: "asha@example.com", Password: "correct horse", Mode: AuthModeSession})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	second, err := svc.Login(LoginInput{Email: "asha@example.com", Password: "correct horse", Mode: AuthModeSession})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := svc.LogoutAll(user.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, err := svc.VerifySession(first.Session.ID); err != domain.ErrSessionExpired {
		t.Errorf("Expected first session revoked, got %v", err)
	}
	if _, err := svc.VerifySession(second.Session.ID); err != domain.ErrSessionExpired {
		t.Errorf("Expected second session revoked, got %v", err)
	}
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	svc, _, _ := newAuthTestService()

	if _, err := svc.Register(RegisterInput{Name: "Asha", Email: "asha@example.com", Password: "correct horse"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	result, err := svc.Login(LoginInput{Email: "asha@example.com", Password: "correct horse", Mode: AuthModeToken})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	other := NewAuthService(testutil.NewMockUserRepository(), testutil.NewMockSessionRepository(), []byte("other-secret"), time.Hour, time.Hour)
	if _, err := other.VerifyToken(result.Token); err != domain.ErrInvalidCredentials {
		t.Errorf("Expected ErrInvalidCredentials for mismatched secret, got %v", err)
	}
}

func TestVerifyToken_Garbage(t *testing.T) {
	svc, _, _ := newAuthTestService()

	if _, err := svc.VerifyToken("not-a-jwt"); err != domain.ErrInvalidCredentials {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
}
