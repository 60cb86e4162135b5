package handlers

import (
	"testing"

	"go.uber.org/zap"

	"github.com/jarinsubahh/buet-exchange/internal/config"
)

func newTestAuthHandler() *AuthHandler {
	return NewAuthHandler(nil, nil, config.SecurityConfig{
		PasswordMinLength:   6,
		AllowedEmailDomains: []string{".buet.ac.bd"},
	}, zap.NewNop())
}

func validRequest() signupRequest {
	return signupRequest{
		Name:            "Fahim Rahman",
		Email:           "fahim@cse.buet.ac.bd",
		Password:        "secret123",
		ConfirmPassword: "secret123",
		Department:      "CSE",
		Level:           3,
		Term:            2,
	}
}

func TestValidateSignup(t *testing.T) {
	ah := newTestAuthHandler()

	req := validRequest()
	if reason := ah.validateSignup(&req); reason != "" {
		t.Fatalf("valid request rejected: %q", reason)
	}

	cases := []struct {
		name   string
		mutate func(*signupRequest)
	}{
		{"missing name", func(r *signupRequest) { r.Name = " " }},
		{"missing email", func(r *signupRequest) { r.Email = "" }},
		{"outside domain", func(r *signupRequest) { r.Email = "someone@outlook.com" }},
		{"short password", func(r *signupRequest) { r.Password = "abc"; r.ConfirmPassword = "abc" }},
		{"confirmation mismatch", func(r *signupRequest) { r.ConfirmPassword = "different" }},
		{"unknown department", func(r *signupRequest) { r.Department = "LAW" }},
		{"level above bound", func(r *signupRequest) { r.Level = 5 }},
		{"negative level", func(r *signupRequest) { r.Level = -1 }},
		{"term above bound", func(r *signupRequest) { r.Term = 9 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			if reason := ah.validateSignup(&req); reason == "" {
				t.Error("expected a validation reason, got none")
			}
		})
	}
}

func TestValidateSignupArchitectureBounds(t *testing.T) {
	ah := newTestAuthHandler()

	// Architecture runs five years, ten terms.
	req := validRequest()
	req.Department = "ARCH"
	req.Level = 5
	req.Term = 10
	if reason := ah.validateSignup(&req); reason != "" {
		t.Errorf("ARCH level 5 term 10 rejected: %q", reason)
	}

	req = validRequest()
	req.Department = "ARCH"
	req.Level = 6
	if reason := ah.validateSignup(&req); reason == "" {
		t.Error("ARCH level 6 accepted")
	}
}

func TestValidateSignupNormalizesEmail(t *testing.T) {
	ah := newTestAuthHandler()

	req := validRequest()
	req.Email = "  Fahim@CSE.BUET.AC.BD "
	if reason := ah.validateSignup(&req); reason != "" {
		t.Fatalf("mixed-case email rejected: %q", reason)
	}
	if req.Email != "fahim@cse.buet.ac.bd" {
		t.Errorf("email not normalized: %q", req.Email)
	}
}
