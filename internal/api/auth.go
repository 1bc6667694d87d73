package api

import (
	"context"
	"net/http"

	"mobiblog/internal/models"
)

type loginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	LoginType string `json:"loginType"`
}

type SignupRequest struct {
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	Password        string      `json:"password"`
	ConfirmPassword string      `json:"confirmPassword"`
	Role            models.Role `json:"userType"`
}

// SignupResult carries the created user when the backend returns one.
type SignupResult struct {
	Message string          `json:"message"`
	User    *models.Session `json:"user,omitempty"`
}

// Login authenticates against the unified endpoint; role picks the login
// variant and the backend refuses accounts of another role.
func (c *Client) Login(ctx context.Context, email, password string, role models.Role) (models.Session, string, error) {
	res := c.Send(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/login",
		Body:   loginRequest{Email: email, Password: password, LoginType: role.LoginType()},
	})
	if err := res.Err(); err != nil {
		return models.Session{}, "", err
	}

	var out struct {
		Message string         `json:"message"`
		User    models.Session `json:"user"`
	}
	if err := res.Decode(&out); err != nil {
		return models.Session{}, "", err
	}
	return out.User, out.Message, nil
}

func (c *Client) Signup(ctx context.Context, req SignupRequest) (SignupResult, error) {
	res := c.Send(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/signup",
		Body:   req,
	})
	if err := res.Err(); err != nil {
		return SignupResult{}, err
	}

	var out SignupResult
	if err := res.Decode(&out); err != nil {
		return SignupResult{}, err
	}
	return out, nil
}
