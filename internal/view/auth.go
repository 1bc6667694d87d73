package view

import (
	"context"
	"fmt"
	"strings"

	"mobiblog/internal/api"
	"mobiblog/internal/models"
)

type Credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Login signs in through the variant matching role and stores the returned
// user. The backend decides whether the account may use that variant.
func (v *Views) Login(ctx context.Context, store SessionStore, role models.Role, creds Credentials) (models.Session, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if err := v.validate.Struct(creds); err != nil {
		return models.Session{}, validationError(err)
	}

	user, _, err := v.backend.Login(ctx, creds.Email, creds.Password, role)
	if err != nil {
		return models.Session{}, err
	}

	if err := store.Set(ctx, user); err != nil {
		return models.Session{}, fmt.Errorf("storing session: %w", err)
	}
	return user, nil
}

type SignupForm struct {
	Name            string `validate:"required,max=100"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required"`
	ConfirmPassword string `validate:"required"`
	Role            models.Role
}

// SignupOutcome says where the visitor goes next.
type SignupOutcome struct {
	Message  string
	SignedIn bool
}

// Signup registers a reader or guest author. A mismatched confirmation is
// refused before anything else is checked.
func (v *Views) Signup(ctx context.Context, store SessionStore, form SignupForm) (SignupOutcome, error) {
	if form.Password != form.ConfirmPassword {
		return SignupOutcome{}, invalid("Passwords do not match.")
	}

	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	if err := v.validate.Struct(form); err != nil {
		return SignupOutcome{}, validationError(err)
	}
	if form.Role != models.RoleReader && form.Role != models.RoleGuestAuthor {
		return SignupOutcome{}, invalid("Please choose %s or %s.", models.RoleReader, models.RoleGuestAuthor)
	}

	res, err := v.backend.Signup(ctx, api.SignupRequest{
		Name:            form.Name,
		Email:           form.Email,
		Password:        form.Password,
		ConfirmPassword: form.ConfirmPassword,
		Role:            form.Role,
	})
	if err != nil {
		return SignupOutcome{}, err
	}

	if res.User == nil || res.User.Role == models.RoleUnknown {
		return SignupOutcome{Message: res.Message}, nil
	}
	if err := store.Set(ctx, *res.User); err != nil {
		return SignupOutcome{}, fmt.Errorf("storing session: %w", err)
	}
	return SignupOutcome{Message: res.Message, SignedIn: true}, nil
}
