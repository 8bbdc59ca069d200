package controllers

import (
	"net/http"

	"github.com/balcao-pos/backend/api/responses"
	"github.com/balcao-pos/backend/pkg/config"
)

type publicConfigView struct {
	IdentityClientID string `json:"identityClientId,omitempty"`
	IdentityIssuer   string `json:"identityIssuer,omitempty"`
	Environment      string `json:"environment"`
}

// PublicConfig exposes the non-secret runtime values the counter UI needs.
func PublicConfig(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, publicConfigView{
			IdentityClientID: cfg.Identity.ClientID,
			IdentityIssuer:   cfg.Identity.Issuer,
			Environment:      cfg.App.Env,
		})
	}
}
