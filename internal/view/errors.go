package view

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"mobiblog/internal/access"
	"mobiblog/internal/api"
)

var (
	ErrNotAuthenticated = errors.New("not signed in")
	ErrForbidden        = errors.New(access.PermissionWarning)
	ErrNotConfirmed     = errors.New("action was not confirmed")
	ErrNotCommentAuthor = errors.New("only the author can delete this comment")
)

const connectionMessage = "Could not connect to the server."

// ValidationError is a form problem caught before any request is sent.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// actionError prefixes the failure of a named action, e.g.
// "Failed to delete blog: Blog not found".
type actionError struct {
	action string
	err    error
}

func (e *actionError) Error() string {
	return e.action + ": " + e.err.Error()
}

func (e *actionError) Unwrap() error {
	return e.err
}

// Message turns err into the text shown to the visitor.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var action *actionError
	if errors.As(err, &action) {
		return action.action + ": " + Message(action.err)
	}

	var validation *ValidationError
	if errors.As(err, &validation) {
		return validation.Message
	}

	var server *api.ServerError
	if errors.As(err, &server) {
		return server.Message
	}

	switch {
	case errors.Is(err, api.ErrConnection):
		return connectionMessage
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "The request was cancelled."
	case errors.Is(err, ErrNotAuthenticated):
		return "Please log in to continue."
	case errors.Is(err, ErrForbidden):
		return access.PermissionWarning
	case errors.Is(err, ErrNotConfirmed):
		return "Please confirm the action first."
	case errors.Is(err, ErrNotCommentAuthor):
		return "You can only delete your own comments."
	}
	return "Something went wrong. Please try again."
}

var fieldLabels = map[string]string{
	"Name":            "Name",
	"Email":           "Email",
	"Password":        "Password",
	"ConfirmPassword": "Password confirmation",
	"Title":           "Title",
	"Content":         "Content",
	"Category":        "Category",
	"Reason":          "Reason",
}

// validationError reports the first failed struct tag in plain words.
func validationError(err error) error {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return err
	}

	fe := fields[0]
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return invalid("%s is required.", label)
	case "email":
		return invalid("Please enter a valid email address.")
	case "max":
		return invalid("%s must be at most %s characters.", label, fe.Param())
	}
	return invalid("%s is invalid.", label)
}
