package controllers

import (
	"net/http"

	"github.com/qrobotics/qrobotics-backend/api/middleware"
	pkgerrors "github.com/qrobotics/qrobotics-backend/pkg/errors"
)

// currentUserID pulls the authenticated user from the request context.
func currentUserID(r *http.Request) (int64, error) {
	id := middleware.UserIDFromContext(r.Context())
	if id == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return id, nil
}
