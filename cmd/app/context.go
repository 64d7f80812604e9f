package main

import (
	"context"
	"net/http"
)

type contextKey string

const emailContextKey = contextKey("email")

func (app *application) createEmailContext(r *http.Request, email string) *http.Request {
	ctx := context.WithValue(r.Context(), emailContextKey, email)
	return r.WithContext(ctx)
}

// getEmailContext returns the authenticated session email, or "" for an
// anonymous request.
func (app *application) getEmailContext(r *http.Request) string {
	email, ok := r.Context().Value(emailContextKey).(string)
	if !ok {
		return ""
	}
	return email
}
