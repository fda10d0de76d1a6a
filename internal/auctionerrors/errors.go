package auctionerrors

import "errors"

// Repository-level errors
var (
	ErrLotNotFound  = errors.New("lot not found")
	ErrBidNotFound  = errors.New("bid not found")
	ErrUserNotFound = errors.New("user not found")
	ErrNoBids       = errors.New("no bids found for lot")
)

// business logic errors
var (
	ErrInvalidLot        = errors.New("invalid lot details")
	ErrLotUnavailable    = errors.New("lot is not available for bidding")
	ErrNotEligible       = errors.New("lot is restricted to VIP users")
	ErrBidTooLow         = errors.New("bid amount too low")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidTransition = errors.New("invalid lot state transition")
	ErrForbidden         = errors.New("admin privileges required")
)

// Rejection carries a user-presentable reason alongside the sentinel it
// wraps, so callers can both match with errors.Is and relay the reason
// verbatim to the originating party.
type Rejection struct {
	Reason string
	Err    error
}

func (r *Rejection) Error() string { return r.Reason }

func (r *Rejection) Unwrap() error { return r.Err }

// Reject builds a Rejection wrapping the given sentinel.
func Reject(sentinel error, reason string) error {
	return &Rejection{Reason: reason, Err: sentinel}
}

// ReasonFor extracts a user-presentable reason from an engine error.
func ReasonFor(err error) string {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej.Reason
	}
	for _, sentinel := range []error{
		ErrLotNotFound, ErrBidNotFound, ErrLotUnavailable, ErrNotEligible,
		ErrBidTooLow, ErrInsufficientFunds, ErrInvalidTransition, ErrForbidden,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "operation failed"
}
