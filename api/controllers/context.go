package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/epartnic/epartnic-backend/api/middleware"
	pkgerrors "github.com/epartnic/epartnic-backend/pkg/errors"
)

// ownerFromRequest resolves the authenticated user's id from the context.
func ownerFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}
