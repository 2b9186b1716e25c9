package content

import (
	"errors"
	"strings"
)

// Action is a client-portal request against one or more pieces.
type Action string

const (
	ActionApprove       Action = "approve"
	ActionRequestAdjust Action = "adjust"
)

var (
	// ErrFeedbackRequired rejects an adjustment request without text.
	ErrFeedbackRequired = errors.New("adjustment requests need a non-empty feedback text")

	// ErrPostedImmutable rejects portal actions on already-posted pieces.
	ErrPostedImmutable = errors.New("posted pieces cannot be changed from the portal")

	ErrUnknownAction = errors.New("unknown approval action")
)

// Apply runs a single approval transition.
//
// Approve moves any non-posted piece to "approved" and clears feedback,
// including re-approval of a piece already approved. RequestAdjust moves any
// non-posted piece to "adjust" and records the feedback text. Approval is not
// gated on final artwork being attached; that is the caller's call.
func Apply(p Piece, action Action, feedback string) (Piece, error) {
	if action == ActionRequestAdjust && strings.TrimSpace(feedback) == "" {
		return p, ErrFeedbackRequired
	}
	return apply(p, action, feedback, true)
}

// ApplyStatus runs the transition without the empty-feedback guard. The
// per-piece portal write uses it: group validation already happened, and
// non-lead carousel slides legitimately carry no feedback. Posted pieces stay
// immutable here too.
func ApplyStatus(p Piece, action Action, feedback string) (Piece, error) {
	return apply(p, action, feedback, true)
}

func apply(p Piece, action Action, feedback string, setFeedback bool) (Piece, error) {
	if p.Status == StatusPosted {
		return p, ErrPostedImmutable
	}
	switch action {
	case ActionApprove:
		p.Status = StatusApproved
		p.Feedback = ""
	case ActionRequestAdjust:
		p.Status = StatusAdjust
		if setFeedback {
			p.Feedback = feedback
		}
	default:
		return p, ErrUnknownAction
	}
	return p, nil
}

// ApplyGroup transitions every listed piece in l, matching by ID.
//
// On adjustment the feedback text lands on the first listed piece only; group
// feedback is read back from that slide by convention. The returned list is a
// copy, l is untouched.
func ApplyGroup(l PieceList, ids []string, action Action, feedback string) (PieceList, error) {
	if action == ActionRequestAdjust && strings.TrimSpace(feedback) == "" {
		return nil, ErrFeedbackRequired
	}
	out := l.Clone()
	for n, id := range ids {
		i := out.index(id)
		if i < 0 {
			continue
		}
		next, err := apply(out[i], action, feedback, n == 0)
		if err != nil {
			return nil, err
		}
		out[i] = next
	}
	return out, nil
}
