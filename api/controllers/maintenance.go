package controllers

import (
	"net/http"

	"github.com/balcao-pos/backend/api/responses"
	"github.com/balcao-pos/backend/internal/maintenance"
	pkgerrors "github.com/balcao-pos/backend/pkg/errors"
	"github.com/balcao-pos/backend/pkg/logger"
)

// MaintenanceStatus serves the advisory banner, unauthenticated.
func MaintenanceStatus(repo maintenance.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "maintenance status unavailable"))
			return
		}

		status, err := repo.Current(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}
