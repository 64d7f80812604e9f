package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthCheckHandler)

	// public surface
	router.HandlerFunc(http.MethodGet, "/v1/posts", app.listPostsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/posts/:slug", app.getPostHandler)
	router.HandlerFunc(http.MethodGet, "/v1/images/:name", app.serveImageHandler)

	// auth service
	router.HandlerFunc(http.MethodPost, "/v1/auth/login", app.rateLimitLogin(app.loginHandler))
	router.HandlerFunc(http.MethodPost, "/v1/auth/logout", app.logoutHandler)

	// admin API
	router.HandlerFunc(http.MethodPost, "/v1/admin/posts", app.requireAdmin(app.createPostHandler))
	router.HandlerFunc(http.MethodGet, "/v1/admin/posts/:slug", app.requireAdmin(app.getPostHandler))
	router.HandlerFunc(http.MethodPut, "/v1/admin/posts/:slug", app.requireAdmin(app.updatePostHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/admin/posts/:slug", app.requireAdmin(app.deletePostHandler))
	router.HandlerFunc(http.MethodPost, "/v1/admin/images", app.requireAdmin(app.uploadImageHandler))
	router.HandlerFunc(http.MethodGet, "/v1/admin/validate", app.requireAdmin(app.validateAdminHandler))

	// admin console pages redirect instead of returning JSON errors
	router.HandlerFunc(http.MethodGet, "/blog/admin", app.adminConsoleGate(app.adminConsoleHandler))
	router.HandlerFunc(http.MethodGet, "/blog/admin/*rest", app.adminConsoleGate(app.adminConsoleHandler))

	return app.recoverPanic(app.logRequest(app.authenticate(router)))
}
