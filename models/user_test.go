package models

import (
	"errors"
	"testing"

	"github.com/akinalp/kimlik/pkg"
)

func TestCreateUserRequestValidate(t *testing.T) {
	valid := func() CreateUserRequest {
		return CreateUserRequest{
			Username: "mehmet_42",
			Email:    "mehmet@example.com",
			Password: "sturdy-password",
		}
	}

	t.Run("valid request", func(t *testing.T) {
		req := valid()
		if err := req.Validate(); err != nil {
			t.Fatalf("Validate() error: %v", err)
		}
	})

	t.Run("trims whitespace", func(t *testing.T) {
		req := valid()
		req.Username = "  mehmet_42  "
		req.Email = " mehmet@example.com "
		if err := req.Validate(); err != nil {
			t.Fatalf("Validate() error: %v", err)
		}
		if req.Username != "mehmet_42" || req.Email != "mehmet@example.com" {
			t.Fatalf("expected trimmed fields, got %q / %q", req.Username, req.Email)
		}
	})

	tests := []struct {
		name   string
		mutate func(*CreateUserRequest)
	}{
		{"username too short", func(r *CreateUserRequest) { r.Username = "ab" }},
		{"username too long", func(r *CreateUserRequest) { r.Username = "abcdefghijklmnopqrstuvwxyz0123456789" }},
		{"username with spaces", func(r *CreateUserRequest) { r.Username = "mehmet 42" }},
		{"username with symbols", func(r *CreateUserRequest) { r.Username = "mehmet!" }},
		{"invalid email", func(r *CreateUserRequest) { r.Email = "not-an-email" }},
		{"short password", func(r *CreateUserRequest) { r.Password = "1234567" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)
			if err := req.Validate(); err == nil {
				t.Fatalf("Validate() expected error")
			}
		})
	}
}

func TestCreateUserRequestCollectsAllFieldErrors(t *testing.T) {
	// Hatalar tek tek değil topluca dönmeli — kullanıcı formu bir kez
	// gönderip üç ihlali birden görür.
	req := CreateUserRequest{Username: "ab", Email: "not-an-email", Password: "short"}

	err := req.Validate()
	if err == nil {
		t.Fatalf("Validate() expected error")
	}
	if !errors.Is(err, pkg.ErrBadRequest) {
		t.Fatalf("validation error must map to ErrBadRequest, got %v", err)
	}

	var verr *pkg.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *pkg.ValidationError, got %T", err)
	}
	for _, field := range []string{"username", "email", "password"} {
		if _, ok := verr.Fields[field]; !ok {
			t.Fatalf("missing field %q in %v", field, verr.Fields)
		}
	}
}

func TestResetPasswordRequestFieldKeys(t *testing.T) {
	req := ResetPasswordRequest{Token: "", NewPassword: "short"}

	var verr *pkg.ValidationError
	if err := req.Validate(); !errors.As(err, &verr) {
		t.Fatalf("expected *pkg.ValidationError, got %v", err)
	}
	if _, ok := verr.Fields["token"]; !ok {
		t.Fatalf("missing token field: %v", verr.Fields)
	}
	if verr.Fields["new_password"] != "password must be at least 8 characters" {
		t.Fatalf("unexpected new_password message: %v", verr.Fields)
	}
}

func TestUserRoleValid(t *testing.T) {
	for _, role := range []UserRole{RoleAdmin, RoleModerator, RoleUser} {
		if !role.Valid() {
			t.Fatalf("%q should be valid", role)
		}
	}
	for _, role := range []UserRole{"", "superadmin", "Admin"} {
		if role.Valid() {
			t.Fatalf("%q should be invalid", role)
		}
	}
}

func TestResetPasswordRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     ResetPasswordRequest
		wantErr bool
	}{
		{"valid", ResetPasswordRequest{Token: "tok", NewPassword: "sturdy-password"}, false},
		{"missing token", ResetPasswordRequest{NewPassword: "sturdy-password"}, true},
		{"missing password", ResetPasswordRequest{Token: "tok"}, true},
		{"short password", ResetPasswordRequest{Token: "tok", NewPassword: "short"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
