package web

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"academyhub/internal/adapters/http/middleware"
	"academyhub/internal/application/orchestrators"
	"academyhub/internal/domain/session"
)

type enrollmentRequestBody struct {
	GroupID  string `json:"groupId"`
	CourseID string `json:"courseId"`
}

// handleRequestEnrollment handles POST /enrollment-requests from the course page
// (form fields groupId, courseId) or as JSON.
func handleRequestEnrollment(w http.ResponseWriter, r *http.Request) {
	var body enrollmentRequestBody
	jsonBody := isJSONBody(r)
	if jsonBody {
		if err := strictDecode(r, &body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		body.GroupID = r.FormValue("groupId")
		body.CourseID = r.FormValue("courseId")
	}
	body.GroupID = strings.TrimSpace(body.GroupID)
	body.CourseID = strings.TrimSpace(body.CourseID)

	sess, _ := middleware.GetSessionFromContext(r.Context())
	res, err := orchestrators.ExecuteRequestEnrollment(r.Context(), orchestrators.RequestEnrollmentInput{
		Session:  sess,
		GroupID:  body.GroupID,
		CourseID: body.CourseID,
	}, orchestrators.RequestEnrollmentDeps{API: app.API})

	if jsonBody {
		switch {
		case errors.Is(err, orchestrators.ErrLoginRequired):
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
		case err != nil:
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		default:
			writeJSON(w, http.StatusOK, res)
		}
		return
	}

	if errors.Is(err, orchestrators.ErrLoginRequired) {
		http.Redirect(w, r, session.RouteLogin, http.StatusSeeOther)
		return
	}
	if body.CourseID == "" {
		if err != nil {
			renderError(w, r, http.StatusUnprocessableEntity, "Enrollment failed", err)
			return
		}
		http.Redirect(w, r, session.RouteDashboard, http.StatusSeeOther)
		return
	}
	if err != nil {
		renderCourse(w, r, body.CourseID, "", body.GroupID, errText(err))
		return
	}

	target := "/courses/" + url.PathEscape(body.CourseID)
	if res.Requested {
		target += "?sent=" + url.QueryEscape(body.GroupID)
	}
	http.Redirect(w, r, target+"#group-"+url.PathEscape(body.GroupID), http.StatusSeeOther)
}
