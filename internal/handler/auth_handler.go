package handlers

import (
	"errors"
	"net/http"

	"mobiblog/internal/access"
	"mobiblog/internal/api"
	"mobiblog/internal/middleware"
	"mobiblog/internal/models"
	"mobiblog/internal/view"
)

type loginPage struct {
	Role   models.Role
	Action string
	Email  string
}

var loginTitles = map[models.Role]string{
	models.RoleReader:      "Login",
	models.RoleGuestAuthor: "Guest Author Login",
	models.RoleAdmin:       "Admin Login",
}

var loginPaths = map[models.Role]string{
	models.RoleReader:      "/",
	models.RoleGuestAuthor: "/guest-login",
	models.RoleAdmin:       "/admin",
}

func (h *Handlers) LoginPage(role models.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.render(w, r, http.StatusOK, "login", Page{
			Title: loginTitles[role],
			Data:  loginPage{Role: role, Action: loginPaths[role]},
		})
	}
}

// Login signs in through one of the three variants. Failures re-render the
// form with the server's message.
func (h *Handlers) Login(role models.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			h.render(w, r, http.StatusBadRequest, "login", Page{Title: loginTitles[role], Error: "Invalid form data.",
				Data: loginPage{Role: role, Action: loginPaths[role]}})
			return
		}

		creds := view.Credentials{Email: r.PostFormValue("email"), Password: r.PostFormValue("password")}
		if _, err := h.Views.Login(r.Context(), storeFrom(r), role, creds); err != nil {
			h.render(w, r, loginStatus(err), "login", Page{
				Title: loginTitles[role],
				Error: view.Message(err),
				Data:  loginPage{Role: role, Action: loginPaths[role], Email: creds.Email},
			})
			return
		}

		http.Redirect(w, r, access.HomePath, http.StatusSeeOther)
	}
}

// loginStatus is 401 when the backend refused the credentials; form and
// transport failures keep their usual status.
func loginStatus(err error) int {
	var serverErr *api.ServerError
	if errors.As(err, &serverErr) {
		return http.StatusUnauthorized
	}
	return statusOf(err)
}

type signupPage struct {
	Form  view.SignupForm
	Roles []models.Role
}

var signupRoles = []models.Role{models.RoleReader, models.RoleGuestAuthor}

func (h *Handlers) SignupPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "signup", Page{
		Title: "Sign Up",
		Data:  signupPage{Form: view.SignupForm{Role: models.RoleReader}, Roles: signupRoles},
	})
}

func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, "signup", Page{Title: "Sign Up", Error: "Invalid form data.",
			Data: signupPage{Roles: signupRoles}})
		return
	}

	role, err := models.ParseRole(r.PostFormValue("userType"))
	if err != nil {
		role = models.RoleReader
	}
	form := view.SignupForm{
		Name:            r.PostFormValue("name"),
		Email:           r.PostFormValue("email"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
		Role:            role,
	}

	out, err := h.Views.Signup(r.Context(), storeFrom(r), form)
	if err != nil {
		form.Password, form.ConfirmPassword = "", ""
		h.render(w, r, http.StatusUnprocessableEntity, "signup", Page{
			Title: "Sign Up",
			Error: view.Message(err),
			Data:  signupPage{Form: form, Roles: signupRoles},
		})
		return
	}

	if out.SignedIn {
		http.Redirect(w, r, access.HomePath, http.StatusSeeOther)
		return
	}
	if out.Message != "" {
		middleware.AddNotice(w, r, h.Cookies, out.Message)
	}
	http.Redirect(w, r, access.LoginPath, http.StatusSeeOther)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	next, err := shellFrom(r).SignOut(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}
