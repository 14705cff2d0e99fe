package web

import (
	"net/http"

	"academyhub/internal/adapters/http/middleware"
	"academyhub/internal/application/orchestrators"
	"academyhub/internal/domain/session"
)

func loginDeps() orchestrators.LoginDeps {
	return orchestrators.LoginDeps{
		API:          app.API,
		SessionStore: app.Sessions,
		TTL:          app.SessionTTL,
	}
}

// handleLogin handles GET (form) and POST (authenticate) for /login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
			http.Redirect(w, r, session.RouteDashboard, http.StatusSeeOther)
			return
		}
		renderTemplate(w, r, "login.html", map[string]any{
			"Registered": r.URL.Query().Get("registered") == "1",
		})

	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		input := orchestrators.LoginInput{
			Email:    r.FormValue("email"),
			Password: r.FormValue("password"),
		}

		s, err := orchestrators.ExecuteLogin(r.Context(), input, loginDeps())
		if err != nil {
			renderTemplate(w, r, "login.html", map[string]any{
				"Email": input.Email,
				"Error": errText(err, "email", "password"),
			})
			return
		}

		middleware.SetSessionCookie(w, s.ID, app.SessionTTL)
		http.Redirect(w, r, session.RouteDashboard, http.StatusSeeOther)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleSignup handles GET (form) and POST (register) for /signup
func handleSignup(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
			http.Redirect(w, r, session.RouteDashboard, http.StatusSeeOther)
			return
		}
		renderTemplate(w, r, "signup.html", map[string]any{})

	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		input := orchestrators.SignupInput{
			FirstName: r.FormValue("firstName"),
			LastName:  r.FormValue("lastName"),
			Email:     r.FormValue("email"),
			Password:  r.FormValue("password"),
		}

		res, err := orchestrators.ExecuteSignup(r.Context(), input, orchestrators.SignupDeps{
			LoginDeps:   loginDeps(),
			OutboxStore: app.Outbox,
		})
		if err != nil {
			renderTemplate(w, r, "signup.html", map[string]any{
				"FirstName": input.FirstName,
				"LastName":  input.LastName,
				"Email":     input.Email,
				"Error":     errText(err, "firstName", "lastName", "email", "password"),
			})
			return
		}

		if !res.LoggedIn {
			http.Redirect(w, r, session.RouteLogin+"?registered=1", http.StatusSeeOther)
			return
		}
		middleware.SetSessionCookie(w, res.Session.ID, app.SessionTTL)
		http.Redirect(w, r, session.RouteDashboard, http.StatusSeeOther)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleLogout handles POST /logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	err := orchestrators.ExecuteLogout(r.Context(), middleware.SessionIDFromRequest(r), orchestrators.LogoutDeps{
		SessionStore: app.Sessions,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
