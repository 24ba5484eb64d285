package apperrors

import "errors"

// Input errors represent requests that are rejected synchronously and never
// retried: the caller sent something the system cannot act on.
var (
	// ErrInvalidFrequency indicates an unknown recurrence frequency token.
	ErrInvalidFrequency = errors.New("invalid frequency")

	// ErrInvalidState indicates a plan state transition that the state machine
	// does not allow (e.g. cancelling an already-terminal plan).
	ErrInvalidState = errors.New("invalid plan state for requested transition")

	// ErrUnauthorized indicates an operation on a plan or account that is not
	// owned by the requesting user.
	ErrUnauthorized = errors.New("not authorized for this resource")

	// ErrInvalidTransactionType indicates an unknown plan transaction type.
	ErrInvalidTransactionType = errors.New("invalid transaction type")

	// ErrInvalidDate indicates a date that does not parse as YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date after end date where that is not allowed).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrNegativeAmount indicates that an amount field is zero or negative.
	ErrNegativeAmount = errors.New("amount must be positive")
)

// Domain entity errors represent missing entities in the system.
var (
	// ErrPlanNotFound indicates that a recurring plan with the given ID does not exist.
	ErrPlanNotFound = errors.New("recurring plan not found")

	// ErrAccountNotFound indicates that no paper account exists for the given user.
	ErrAccountNotFound = errors.New("account not found")

	// ErrFundNotFound indicates that a fund with the given scheme code does not exist.
	ErrFundNotFound = errors.New("fund not found")

	// ErrHoldingNotFound indicates that no holding exists for the user/scheme pair.
	ErrHoldingNotFound = errors.New("holding not found")

	// ErrNavNotFound indicates that no NAV record exists for the given scheme code.
	ErrNavNotFound = errors.New("nav not found")

	// ErrSettingNotFound indicates a system setting key has not been configured.
	ErrSettingNotFound = errors.New("system setting not found")
)

// Business errors represent installment outcomes. They are recorded as FAILED
// execution records, do not abort the batch, and the plan's schedule still
// advances. The engine never surfaces them to the scheduler as errors.
var (
	// ErrNavUnavailable indicates that no NAV could be resolved for the
	// plan's scheme at execution time.
	ErrNavUnavailable = errors.New("nav unavailable")

	// ErrInsufficientBalance indicates that a buy-side installment exceeds the
	// account's cash balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInsufficientUnits indicates that a sell-side installment requires more
	// units than the holding contains.
	ErrInsufficientUnits = errors.New("insufficient units")

	// ErrDuplicateAccount indicates an account already exists for the user.
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrDuplicateExecution indicates an execution record already exists for
	// the plan and scheduled date. The unique constraint on
	// (plan_id, scheduled_date) is the hard idempotency backstop.
	ErrDuplicateExecution = errors.New("installment already executed for this date")
)

// Infrastructure errors represent persistence-level failures. A plan whose
// execution hits one of these is rolled back without partial mutation and
// remains due for the next scheduler invocation.
var (
	// ErrPlanConflict indicates the plan row changed underneath an in-flight
	// execution (optimistic version check failed), typically because the user
	// cancelled it concurrently.
	ErrPlanConflict = errors.New("plan modified concurrently")
)

// Operation failure errors for API responses.
var (
	ErrFailedToRetrievePlans      = errors.New("failed to retrieve plans")
	ErrFailedToRetrievePlan       = errors.New("failed to retrieve plan")
	ErrFailedToRetrieveAccount    = errors.New("failed to retrieve account")
	ErrFailedToRetrievePortfolio  = errors.New("failed to retrieve portfolio")
	ErrFailedToRetrieveFunds      = errors.New("failed to retrieve funds")
	ErrFailedToRetrieveFund       = errors.New("failed to retrieve fund")
	ErrFailedToRetrieveNavHistory = errors.New("failed to retrieve nav history")
	ErrFailedToRetrieveRecords    = errors.New("failed to retrieve execution records")
	ErrFailedToRetrieveLedger     = errors.New("failed to retrieve cash transactions")
)
