package errors

import (
	"errors"

	"driipnet/jsonx"
)

// ChallengeErrorCode represents standardized error codes for settlement
// challenge operations
type ChallengeErrorCode string

const (
	// General errors
	ErrCodeInternal ChallengeErrorCode = "internal_error"

	// Authorization errors
	ErrCodeUnauthorized ChallengeErrorCode = "unauthorized"

	// Authenticity errors
	ErrCodeInvalidSeal ChallengeErrorCode = "invalid_seal"

	// State conflict errors
	ErrCodeChallengeActive   ChallengeErrorCode = "challenge_active"
	ErrCodeChallengeNotFound ChallengeErrorCode = "challenge_not_found"
	ErrCodeChallengeExpired  ChallengeErrorCode = "challenge_expired"

	// Evidence admission errors
	ErrCodeEvidenceInsufficient ChallengeErrorCode = "evidence_insufficient"
	ErrCodeReferenceMismatch    ChallengeErrorCode = "reference_mismatch"
	ErrCodeCandidateCancelled   ChallengeErrorCode = "candidate_cancelled"

	// Operational gate errors
	ErrCodeWalletLocked      ChallengeErrorCode = "wallet_locked"
	ErrCodeSettlementNotOpen ChallengeErrorCode = "settlement_not_open"
)

// ChallengeError represents a standardized settlement challenge error
type ChallengeError struct {
	Code    ChallengeErrorCode `json:"code"`
	Message string             `json:"message"`
}

// Error implements the error interface
func (e *ChallengeError) Error() string {
	body, _ := jsonx.Marshal(ChallengeError{
		Code:    e.Code,
		Message: e.Message,
	})
	return string(body)
}

// Error message constants - user-friendly and concise
const (
	ErrMsgUnauthorized         = "Caller is neither operator nor a party to the driip"
	ErrMsgInvalidSeal          = "Driip seal verification failed"
	ErrMsgChallengeActive      = "An unexpired settlement challenge already exists for this wallet"
	ErrMsgChallengeNotFound    = "No settlement challenge exists for this wallet"
	ErrMsgChallengeExpired     = "The settlement challenge window has closed"
	ErrMsgEvidenceInsufficient = "Candidate does not prove balance insufficiency"
	ErrMsgReferenceMismatch    = "Candidate does not reference the challenged driip"
	ErrMsgDriipMissing         = "Required driip is missing from the request"
	ErrMsgCandidateCancelled   = "Candidate order was previously cancelled"
	ErrMsgWalletLocked         = "Wallet is locked"
	ErrMsgSettlementNotOpen    = "Settlement has not opened at the current block"
	ErrMsgInternal             = "Server error, please try again"
)

// NewError creates a new ChallengeError and returns it as error interface
func NewError(code ChallengeErrorCode, message string) error {
	return &ChallengeError{
		Code:    code,
		Message: message,
	}
}

// CodeOf extracts the challenge error code from err, or ErrCodeInternal when
// err carries no code.
func CodeOf(err error) ChallengeErrorCode {
	var ce *ChallengeError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ErrCodeInternal
}

// HasCode reports whether err is a ChallengeError with the given code.
func HasCode(err error, code ChallengeErrorCode) bool {
	var ce *ChallengeError
	return errors.As(err, &ce) && ce.Code == code
}
