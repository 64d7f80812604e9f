package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/fennwick/pressroom/internal/common"
	"github.com/fennwick/pressroom/internal/imageservice"
)

// maxImageBytes caps upload bodies at 10 MiB, below FormFile's 32 MiB
// in-memory parse threshold, so an accepted upload is never spooled to disk.
const maxImageBytes = 10 << 20

func (app *application) uploadImageHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)

	file, header, err := r.FormFile("image")
	if err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			app.badRequestErrorResponse(w, r, fmt.Errorf("image must not be larger than %d bytes", maxBytesError.Limit))
			return
		}
		app.badRequestErrorResponse(w, r, errors.New("image file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	// Call the image service
	imageURL, err := app.imageService.Upload(r.Context(), data, contentType, header.Filename)
	if err != nil {
		switch {
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		case errors.Is(err, imageservice.ErrPublicURLUnresolved):
			app.logError(r, err)
			app.writeErrorResponse(w, r, http.StatusInternalServerError, err.Error())
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"image_url": imageURL}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) serveImageHandler(w http.ResponseWriter, r *http.Request) {
	name, err := app.readPathParam(r, "name")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	obj, err := app.imageService.Get(r.Context(), name)
	if err != nil {
		switch {
		case errors.Is(err, imageservice.ErrObjectNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Cache-Control", obj.CacheControl)
	w.Write(obj.Data)
}
