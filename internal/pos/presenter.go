package pos

import (
	"time"

	"github.com/balcao-pos/backend/internal/intents"
	"github.com/balcao-pos/backend/pkg/enums"
)

// DisplayState is what the operator-facing screen shows for one payment.
type DisplayState string

const (
	DisplayAwaiting DisplayState = "awaiting"
	DisplayApproved DisplayState = "approved"
	DisplayDeclined DisplayState = "declined"
	DisplayCanceled DisplayState = "canceled"
	DisplayError    DisplayState = "error"
	DisplayExpired  DisplayState = "expired"
	DisplayTimeout  DisplayState = "timeout"
)

// Present projects the last known intent view plus locally tracked elapsed
// time onto a display state. A terminal status always wins over the local
// timeout: timeout only says the client stopped watching, not that the
// payment failed.
func Present(view *intents.IntentView, elapsed, deadline time.Duration) DisplayState {
	if view != nil {
		switch view.Status {
		case enums.IntentStatusApproved:
			return DisplayApproved
		case enums.IntentStatusDeclined:
			return DisplayDeclined
		case enums.IntentStatusCanceled:
			return DisplayCanceled
		case enums.IntentStatusError:
			return DisplayError
		case enums.IntentStatusExpired:
			return DisplayExpired
		}
	}
	if deadline > 0 && elapsed >= deadline {
		return DisplayTimeout
	}
	return DisplayAwaiting
}
