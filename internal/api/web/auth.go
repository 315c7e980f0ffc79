package web

import (
	"net/http"
	"strings"

	"shoplist/internal/domain"
	apperror "shoplist/internal/errors"
	"shoplist/internal/pkg/middleware"
)

func currentUser(r *http.Request) (domain.User, bool) {
	return middleware.CurrentUser(r.Context())
}

// RegisterForm renders the registration page.
func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "register.html", http.StatusOK, viewData{})
}

// Register creates an account from the submitted form and signs the new
// user in immediately. Any role value in the posted form is ignored: the
// service pins self-registered accounts to the lowest-privilege role.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	reg := domain.Registration{
		Username:        r.PostFormValue("username"),
		Email:           r.PostFormValue("email"),
		Password:        r.PostFormValue("password1"),
		PasswordConfirm: r.PostFormValue("password2"),
	}

	user, err := h.Users.Register(r.Context(), reg)
	if err != nil {
		if fields := apperror.FieldsOf(err); fields != nil {
			h.render(w, r, "register.html", http.StatusOK, viewData{
				Errors: fields,
				Values: map[string]string{"username": reg.Username, "email": reg.Email},
			})
			return
		}
		h.renderError(w, r, err)
		return
	}

	if err := h.Sessions.SignIn(w, r, user.ID); err != nil {
		h.Logger.Error("failed to establish session after registration", err)
	}
	http.Redirect(w, r, "/products/", http.StatusFound)
}

// LoginForm renders the login page, preserving the return path.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "login.html", http.StatusOK, viewData{Next: safeNext(r.URL.Query().Get("next"))})
}

// Login verifies credentials and establishes a session. On failure the
// login page is re-rendered with an error and no session state is created.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	email := r.PostFormValue("email")
	next := safeNext(r.PostFormValue("next"))

	user, err := h.Users.Login(r.Context(), email, r.PostFormValue("password"))
	if err != nil {
		h.render(w, r, "login.html", http.StatusOK, viewData{
			Errors: apperror.FieldErrors{"__all__": "invalid email or password"},
			Values: map[string]string{"email": email},
			Next:   next,
		})
		return
	}

	if err := h.Sessions.SignIn(w, r, user.ID); err != nil {
		h.Logger.Error("failed to establish session after login", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if next == "" {
		next = "/products/"
	}
	http.Redirect(w, r, next, http.StatusFound)
}

// Logout destroys the session and returns to the login page.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.SignOut(w, r)
	http.Redirect(w, r, "/login/", http.StatusFound)
}

// safeNext only accepts local paths as a post-login return target, so the
// login flow cannot be used as an open redirect.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return ""
}
