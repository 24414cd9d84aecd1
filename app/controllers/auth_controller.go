package controllers

import (
	"errors"
	"net/http"
	"strings"

	"yatube/app/apperr"
	"yatube/app/services"
	"yatube/app/views"

	"go.uber.org/zap"
)

// AuthController handles sign up, log in, log out and account deletion
type AuthController struct {
	base
}

// NewAuthController creates a new AuthController
func NewAuthController(deps *Deps) *AuthController {
	return &AuthController{base{deps}}
}

// Login shows the login form and signs the user in
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	form := views.LoginView{Next: r.FormValue("next")}
	if r.Method != http.MethodPost {
		ac.render(w, r, http.StatusOK, "login", form)
		return
	}

	form.Username = r.FormValue("username")
	user, err := ac.Users.Authenticate(form.Username, r.FormValue("password"))
	if errors.Is(err, services.ErrBadCredentials) {
		form.Errors = map[string]string{"__all__": "Please enter a correct username and password."}
		ac.render(w, r, http.StatusOK, "login", form)
		return
	}
	if err != nil {
		ac.fail(w, r, err)
		return
	}
	if err := ac.Identity.SignIn(w, r, user); err != nil {
		ac.fail(w, r, err)
		return
	}

	if safeNext(form.Next) {
		http.Redirect(w, r, form.Next, http.StatusSeeOther)
		return
	}
	ac.redirect(w, r, "/")
}

// Signup registers an account and signs it in
func (ac *AuthController) Signup(w http.ResponseWriter, r *http.Request) {
	form := views.SignupView{}
	if r.Method != http.MethodPost {
		ac.render(w, r, http.StatusOK, "signup", form)
		return
	}

	form.Username = r.FormValue("username")
	form.Email = r.FormValue("email")
	password := r.FormValue("password")
	if password != r.FormValue("password2") {
		form.Errors = map[string]string{"password2": "The two password fields didn't match."}
		ac.render(w, r, http.StatusOK, "signup", form)
		return
	}

	user, err := ac.Users.Register(form.Username, form.Email, password)
	if fields := apperr.FieldErrors(err); fields != nil {
		form.Errors = fields
		ac.render(w, r, http.StatusOK, "signup", form)
		return
	}
	if err != nil {
		ac.fail(w, r, err)
		return
	}
	if err := ac.Identity.SignIn(w, r, user); err != nil {
		ac.fail(w, r, err)
		return
	}
	ac.redirect(w, r, "/")
}

// Logout clears the session
func (ac *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	if err := ac.Identity.SignOut(w, r); err != nil {
		ac.Logger.Warn("sign out failed", zap.Error(err))
	}
	ac.redirect(w, r, "/")
}

// Delete removes the signed-in account with all of its content
func (ac *AuthController) Delete(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if err := ac.Users.DeleteUser(r.Context(), user); err != nil {
		ac.fail(w, r, err)
		return
	}
	ac.Logger.Info("account deleted", zap.String("username", user.Username))
	if err := ac.Identity.SignOut(w, r); err != nil {
		ac.Logger.Warn("sign out failed", zap.Error(err))
	}
	ac.redirect(w, r, "/")
}

// safeNext accepts only local absolute paths.
func safeNext(next string) bool {
	return strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.HasPrefix(next, "/\\")
}
