package web

import (
	"errors"
	"net/http"

	"academyhub/internal/application/orchestrators"
	"academyhub/internal/validation"
)

// handleContact handles GET (form) and POST (queue message) for /contact
func handleContact(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		renderTemplate(w, r, "contact.html", map[string]any{
			"Sent": r.URL.Query().Get("sent") == "1",
		})

	case http.MethodPost:
		var input orchestrators.SubmitContactInput
		jsonBody := isJSONBody(r)
		if jsonBody {
			if err := strictDecode(r, &input); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
				return
			}
		} else {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			input = orchestrators.SubmitContactInput{
				Name:    r.FormValue("name"),
				Email:   r.FormValue("email"),
				Subject: r.FormValue("subject"),
				Message: r.FormValue("message"),
			}
		}

		msg, err := orchestrators.ExecuteSubmitContact(r.Context(), input, orchestrators.SubmitContactDeps{
			OutboxStore: app.Outbox,
			ContactTo:   app.ContactTo,
		})
		var fieldErrs validation.FieldErrors
		isInputErr := errors.As(err, &fieldErrs) || errors.Is(err, orchestrators.ErrContactUnconfigured)
		if err != nil && !isInputErr {
			internalError(w, err)
			return
		}

		if jsonBody {
			if err != nil {
				writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": errText(err), "fields": fieldErrs})
				return
			}
			writeJSON(w, http.StatusAccepted, map[string]string{"id": msg.ID})
			return
		}
		if err != nil {
			renderTemplateStatus(w, r, http.StatusUnprocessableEntity, "contact.html", map[string]any{
				"Form":   input,
				"Errors": fieldErrs,
				"Error":  errText(err, "name", "email", "subject", "message"),
			})
			return
		}
		http.Redirect(w, r, "/contact?sent=1", http.StatusSeeOther)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
