package main

import (
	"errors"
	"net/http"

	"github.com/fennwick/pressroom/internal/common"
	"github.com/fennwick/pressroom/internal/postservice"
)

func (app *application) listPostsHandler(w http.ResponseWriter, r *http.Request) {
	page, err := app.readPageParam(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	list, err := app.postService.List(r.Context(), page)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	env := envelope{
		"posts":        list.Posts,
		"total_pages":  list.TotalPages,
		"current_page": list.CurrentPage,
	}

	err = app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) getPostHandler(w http.ResponseWriter, r *http.Request) {
	slug, err := app.readPathParam(r, "slug")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	post, err := app.postService.Get(r.Context(), slug)
	if err != nil {
		switch {
		case errors.Is(err, postservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"post": post}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

type createPostRequest struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Slug        string `json:"slug"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Keywords    string `json:"keywords"`
}

func (app *application) createPostHandler(w http.ResponseWriter, r *http.Request) {
	var input createPostRequest

	// Parse the request body
	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	req := &postservice.CreatePostRequest{
		Title:       input.Title,
		Content:     input.Content,
		Slug:        input.Slug,
		Date:        input.Date,
		Description: input.Description,
		Keywords:    input.Keywords,
	}

	// Call the post service
	slug, err := app.postService.Create(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, postservice.ErrDuplicateSlug):
			app.conflictErrorResponse(w, r, postservice.ErrDuplicateSlug.Error())
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	env := envelope{
		"slug":             slug,
		"operation_status": "success",
		"rebuild_status":   app.triggerRebuild(),
	}

	err = app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

type updatePostRequest struct {
	Title       string  `json:"title"`
	Content     *string `json:"content"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Keywords    string  `json:"keywords"`
}

func (app *application) updatePostHandler(w http.ResponseWriter, r *http.Request) {
	slug, err := app.readPathParam(r, "slug")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	var input updatePostRequest

	// Parse the request body
	err = app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	req := &postservice.UpdatePostRequest{
		Title:       input.Title,
		Content:     input.Content,
		Date:        input.Date,
		Description: input.Description,
		Keywords:    input.Keywords,
	}

	// Call the post service
	err = app.postService.Update(r.Context(), slug, req)
	if err != nil {
		switch {
		case errors.Is(err, postservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	env := envelope{
		"slug":             slug,
		"operation_status": "success",
		"rebuild_status":   app.triggerRebuild(),
	}

	err = app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) deletePostHandler(w http.ResponseWriter, r *http.Request) {
	slug, err := app.readPathParam(r, "slug")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	// Call the post service
	err = app.postService.Delete(r.Context(), slug)
	if err != nil {
		switch {
		case errors.Is(err, postservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	// Deleting a post never triggers a rebuild on its own.
	env := envelope{
		"operation_status": "success",
		"message":          "post deleted",
		"rebuild_status":   rebuildSkipped,
	}

	err = app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}
