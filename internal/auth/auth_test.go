package auth

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/it-helpdesk/internal/domain"
)

func testRoster(t *testing.T) *Roster {
	t.Helper()
	r, err := NewRoster(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewRoster: %v", err)
	}
	return r
}

func TestLoginAdmin(t *testing.T) {
	r := testRoster(t)

	account, err := r.Login("IT Administration", "ADMIN2024")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if account.Role != domain.RoleAdministrator {
		t.Errorf("role = %q", account.Role)
	}
	if account.Email != "admin@company.com" {
		t.Errorf("email = %q", account.Email)
	}
}

func TestLoginOperator(t *testing.T) {
	r := testRoster(t)

	account, err := r.Login("DCM", "DCM1234")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if account.Role != domain.RoleOperator {
		t.Errorf("role = %q", account.Role)
	}
	if account.Email != "dcm@company.com" {
		t.Errorf("email = %q", account.Email)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	r := testRoster(t)

	cases := []struct {
		name       string
		department string
		password   string
	}{
		{"wrong password", "DCM", "nope"},
		{"unknown department", "Warehouse", "DCM1234"},
		{"empty password", "DCM", ""},
		{"case sensitive department", "dcm", "DCM1234"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := r.Login(tc.department, tc.password); !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("err = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestDepartmentsListsAllAccounts(t *testing.T) {
	r := testRoster(t)

	accounts := r.Departments()
	if len(accounts) != 15 {
		t.Fatalf("accounts = %d, want 15", len(accounts))
	}
	if accounts[0].Role != domain.RoleAdministrator {
		t.Error("administrator should lead the list")
	}
	admins := 0
	for _, a := range accounts {
		if a.IsAdmin() {
			admins++
		}
	}
	if admins != 1 {
		t.Errorf("administrators = %d, want exactly 1", admins)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	account := domain.Account{
		ID:         "office-westfield",
		Email:      "office.westfield@company.com",
		Name:       "Office-Westfield",
		Role:       domain.RoleOperator,
		Department: "Office-Westfield",
	}

	token, expiresAt, err := tm.GenerateToken(account)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if remaining := time.Until(expiresAt); remaining < 59*time.Minute || remaining > 61*time.Minute {
		t.Errorf("expiry %v not near the 60 minute TTL", remaining)
	}

	got, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if got != account {
		t.Errorf("parsed account = %+v, want %+v", got, account)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret-a", 60)
	token, _, err := tm.GenerateToken(domain.Account{ID: "dcm", Department: "DCM", Role: domain.RoleOperator})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	other := NewTokenManager("secret-b", 60)
	if _, err := other.ParseToken(token); err == nil {
		t.Error("token signed with a different secret must not parse")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("secret", 60)
	if _, err := tm.ParseToken("not.a.token"); err == nil {
		t.Error("garbage token must not parse")
	}
}
