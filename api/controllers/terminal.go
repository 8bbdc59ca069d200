package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/balcao-pos/backend/api/responses"
	"github.com/balcao-pos/backend/api/validators"
	intentsvc "github.com/balcao-pos/backend/internal/intents"
	"github.com/balcao-pos/backend/internal/terminal"
	"github.com/balcao-pos/backend/pkg/enums"
	pkgerrors "github.com/balcao-pos/backend/pkg/errors"
	"github.com/balcao-pos/backend/pkg/logger"
)

type terminalResultRequest struct {
	EventID  string    `json:"eventId" validate:"required"`
	IntentID uuid.UUID `json:"intentId" validate:"required"`
	Outcome  string    `json:"outcome" validate:"required"`
	Reason   string    `json:"reason"`
}

// TerminalResults receives outcome deliveries from the payment terminal,
// at-least-once. The dedup guard short-circuits replays; the conditional
// transition inside the service makes any delivery that slips past it
// harmless anyway. On an apply failure the dedup mark is dropped so the
// terminal's retry can reach the service again.
func TerminalResults(svc intentsvc.Service, guard *terminal.ResultGuard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "intent service unavailable"))
			return
		}

		var payload terminalResultRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		outcome, err := enums.ParseTerminalOutcome(payload.Outcome)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown terminal outcome").
				WithDetails(map[string]any{"outcome": payload.Outcome}))
			return
		}

		if guard != nil {
			duplicate, err := guard.CheckAndMark(ctx, payload.EventID)
			switch {
			case err != nil:
				// Guard unavailable: let the delivery through, the
				// conditional transition neutralizes any duplicate.
				if logg != nil {
					logg.Warn(ctx, "terminal result dedup check failed, applying anyway")
				}
			case duplicate:
				responses.WriteSuccessStatus(w, http.StatusAccepted, nil)
				return
			}
		}

		result := intentsvc.TerminalResult{Outcome: outcome, Reason: payload.Reason}
		if err := svc.ApplyTerminalResult(ctx, payload.IntentID, result); err != nil {
			if guard != nil {
				_ = guard.Forget(ctx, payload.EventID)
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusAccepted, nil)
	}
}
