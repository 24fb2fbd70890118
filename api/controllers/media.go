package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/qrobotics/qrobotics-backend/api/responses"
	"github.com/qrobotics/qrobotics-backend/api/validators"
	mediasvc "github.com/qrobotics/qrobotics-backend/internal/media"
	pkgerrors "github.com/qrobotics/qrobotics-backend/pkg/errors"
	"github.com/qrobotics/qrobotics-backend/pkg/logger"
)

func parseOwnerKind(raw string) (mediasvc.OwnerKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "product", "products":
		return mediasvc.OwnerProduct, nil
	case "category", "categories":
		return mediasvc.OwnerCategory, nil
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, "owner must be product or category")
}

// UploadImage accepts a multipart form with an "image" file part and attaches
// it to the owner named in the route.
func UploadImage(svc mediasvc.Service, maxUploadMB int, logg *logger.Logger) http.HandlerFunc {
	maxBytes := int64(maxUploadMB) << 20
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		owner, err := parseOwnerKind(chi.URLParam(r, "owner"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ownerID, err := validators.ParseIDParam(r, "ownerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "image file part required"))
			return
		}
		defer file.Close()

		image, err := svc.UploadImage(r.Context(), mediasvc.UploadInput{
			Owner:    owner,
			OwnerID:  ownerID,
			File:     file,
			FileName: header.Filename,
			Size:     header.Size,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, image)
	}
}

// DeleteImage removes an image row after a best-effort remote destroy.
func DeleteImage(svc mediasvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		owner, err := parseOwnerKind(chi.URLParam(r, "owner"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		imageID, err := validators.ParseIDParam(r, "imageId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.DeleteImage(r.Context(), owner, imageID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if result.Warning != "" {
			responses.WriteSuccessWarning(w, result, result.Warning)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
