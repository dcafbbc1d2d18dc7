package services

import "errors"

// Error taxonomy of the bookkeeping core. Handlers map each of these to a
// distinct user-facing message; anything else that bubbles up from the
// store is treated as retryable.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrListingNotFound     = errors.New("listing not found")
	ErrContractNotFound    = errors.New("contract not found")
	ErrInstallmentNotFound = errors.New("installment not found")

	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrAlreadyReserved     = errors.New("listing is already reserved by another user")
	ErrAlreadySold         = errors.New("listing is already sold")
	ErrAlreadyPaid         = errors.New("installment is already paid")
	ErrNotContractOwner    = errors.New("contract belongs to another user")
	ErrContractNotPending  = errors.New("contract is not awaiting payment")
	ErrListingNotOpen      = errors.New("listing is not open")

	ErrDuplicateDeposit = errors.New("deposit with this reference was already credited")

	ErrUserAlreadyExists = errors.New("user with this email already exists")
	ErrOptimisticLock    = errors.New("data has been modified by another user, please refresh and try again")
)
