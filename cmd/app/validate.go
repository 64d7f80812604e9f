package main

import "net/http"

// validateAdminHandler answers the admin console's session probe and runs the
// schema provisioner on every successful call. The requireAdmin wrapper has
// already settled the 401/403/500 auth outcomes by the time this runs.
func (app *application) validateAdminHandler(w http.ResponseWriter, r *http.Request) {
	msg, err := app.provisioner.EnsureSchema(r.Context())
	if err != nil {
		app.logError(r, err)
		app.writeErrorResponse(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	env := envelope{
		"authorized": true,
		"message":    msg,
	}

	err = app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

// adminConsoleHandler is the landing endpoint behind the console gate. The
// console front end itself is served elsewhere; this confirms the gate let
// the request through.
func (app *application) adminConsoleHandler(w http.ResponseWriter, r *http.Request) {
	env := envelope{
		"email":   app.getEmailContext(r),
		"message": "admin console",
	}

	err := app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}
