package handlers_test

import (
	"errors"
	"net/http"
	"testing"
)

func TestRegisterCreatesUserAndSendsEmail(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodPost, "/register", "", map[string]any{
		"first_name": "Asha",
		"last_name":  "Rao",
		"email":      "Asha@Example.com",
		"phone":      "9876543210",
		"password":   "secret123",
	})
	wantStatus(t, status, http.StatusCreated, body)
	if body["message"] != "User created & email sent!" {
		t.Fatalf("message = %v", body["message"])
	}
	if f.mailer.calls != 1 || f.mailer.to != "asha@example.com" {
		t.Fatalf("welcome mail not sent to normalized email: %+v", f.mailer)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "asha@example.com", "9876543210", "secret123")

	status, body := f.do(t, http.MethodPost, "/register", "", map[string]any{
		"first_name": "Asha",
		"email":      "asha@example.com",
		"password":   "secret123",
	})
	wantStatus(t, status, http.StatusBadRequest, body)
	if body["error"] != "Email already registered" {
		t.Fatalf("error = %v", body["error"])
	}
}

func TestRegisterEmailFailureDoesNotFailRegistration(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = errors.New("smtp down")

	status, body := f.do(t, http.MethodPost, "/register", "", map[string]any{
		"first_name": "Asha",
		"email":      "asha@example.com",
		"password":   "secret123",
	})
	wantStatus(t, status, http.StatusCreated, body)
	if body["message"] != "User created, but email failed to send" {
		t.Fatalf("message = %v", body["message"])
	}
}

func TestRegisterMissingFields(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodPost, "/register", "", map[string]any{
		"email": "asha@example.com",
	})
	wantStatus(t, status, http.StatusBadRequest, body)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(t, "asha@example.com", "9876543210", "secret123")

	status, body := f.do(t, http.MethodPost, "/login", "", map[string]any{
		"email":    "asha@example.com",
		"password": "secret123",
	})
	wantStatus(t, status, http.StatusOK, body)
	if body["token"] == "" || body["token"] == nil {
		t.Fatal("expected a token")
	}
	if body["userId"] != u.ID.Hex() {
		t.Fatalf("userId = %v, want %s", body["userId"], u.ID.Hex())
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "asha@example.com", "9876543210", "secret123")

	for _, req := range []map[string]any{
		{"email": "asha@example.com", "password": "wrong"},
		{"email": "nobody@example.com", "password": "secret123"},
	} {
		status, body := f.do(t, http.MethodPost, "/login", "", req)
		wantStatus(t, status, http.StatusUnauthorized, body)
		if body["error"] != "Invalid credentials" {
			t.Fatalf("error = %v", body["error"])
		}
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodGet, "/cart", "", nil)
	wantStatus(t, status, http.StatusUnauthorized, body)

	status, body = f.do(t, http.MethodGet, "/cart", "not-a-token", nil)
	wantStatus(t, status, http.StatusUnauthorized, body)
}
