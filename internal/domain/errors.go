package domain

import "errors"

var (
	// ErrNotFound covers any record lookup that comes back empty.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyProcessed guards the Pending -> terminal transition: a
	// record can be finalized exactly once.
	ErrAlreadyProcessed = errors.New("record already processed")

	// Submission errors.
	ErrAlreadyElevated             = errors.New("account already holds elevated privileges")
	ErrDuplicatePending            = errors.New("a pending application already exists")
	ErrNotAPromoter                = errors.New("only promoters may submit suggestions")
	ErrMissingTarget               = errors.New("suggestion does not name an attraction to update")
	ErrMissingNewAttractionFields  = errors.New("new attractions need coordinates and a type")
	ErrTargetNotFound              = errors.New("target attraction does not exist")
	ErrIncompleteNewAttractionData = errors.New("suggestion lacks the data for a new attraction")

	// ErrRoleNotConfigured is fatal to a decision: no promotion may be
	// applied without a resolvable role.
	ErrRoleNotConfigured = errors.New("role is not configured")
)
