package apperrors

import "errors"

// Configuration errors are raised at construction time and are never retried.
var (
	// ErrInvalidPoolMethod indicates an accounting method other than FIFO or LIFO.
	ErrInvalidPoolMethod = errors.New("invalid pool method")

	// ErrNilPriceOracle indicates that a basis processor was built without a price oracle.
	ErrNilPriceOracle = errors.New("price oracle is required")

	// ErrInvalidRounding indicates an unknown report rounding mode.
	ErrInvalidRounding = errors.New("invalid rounding mode")
)

// Price data errors.
var (
	// ErrNoPriceData indicates that the price oracle has no OHLC record for a symbol and day.
	// It aborts the basis run for the whole input set.
	ErrNoPriceData = errors.New("no price data")
)

// Data errors represent malformed transactions or violated engine invariants.
var (
	// ErrNegativeAmount indicates that an amount field has an invalid negative value.
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// ErrInvalidOperation indicates an unknown transaction operation.
	ErrInvalidOperation = errors.New("invalid transaction operation")

	// ErrSyntheticInput indicates that an engine-internal SPLIT record was passed in as input.
	ErrSyntheticInput = errors.New("split transactions cannot be processed as input")

	// ErrSymbolMismatch indicates a pool addition under a symbol the lot was not received in.
	ErrSymbolMismatch = errors.New("lot symbol does not match pool symbol")

	// ErrInvariantViolation indicates that the matching engine reached a state it should never reach,
	// e.g. splitting a lot by more than its own quantity.
	ErrInvariantViolation = errors.New("basis invariant violated")

	// ErrMissingRequiredField indicates that a required field is missing or empty.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrUnrecognizedFormat indicates that no parser accepted an uploaded file.
	ErrUnrecognizedFormat = errors.New("unrecognized transaction file format")

	// ErrMalformedRow indicates a row of a recognized file that cannot be turned into a transaction.
	ErrMalformedRow = errors.New("malformed row")
)

// Domain entity errors represent missing entities in the system.
var (
	// ErrUserNotFound indicates that a user with the given ID does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrTransactionNotFound indicates that a transaction with the given ID does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrTaxDocNotFound indicates that an uploaded document with the given ID or hash does not exist.
	ErrTaxDocNotFound = errors.New("tax document not found")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")
)

// Storage errors.
var (
	// ErrDecryptionFailed indicates a stored document that the configured key cannot open.
	ErrDecryptionFailed = errors.New("failed to decrypt stored document")

	// ErrDuplicateUpload indicates a file that the user has already imported.
	ErrDuplicateUpload = errors.New("file already imported")
)

// Operation failure errors.
var (
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToCreateTransaction    = errors.New("failed to create transaction")
	ErrFailedToImportTransactions   = errors.New("failed to import transactions")
	ErrFailedToRunBasis             = errors.New("failed to run basis calculation")
	ErrFailedToRetrieveReports      = errors.New("failed to retrieve cost basis reports")
	ErrFailedToCreateUser           = errors.New("failed to create user")
	ErrFailedToRefreshPrices        = errors.New("failed to refresh prices")
	ErrFailedToRetrieveUsers        = errors.New("failed to retrieve users")
	ErrFailedToDeleteTransaction    = errors.New("failed to delete transaction")
	ErrFailedToRetrieveTaxDocs      = errors.New("failed to retrieve tax documents")
	ErrFailedToDeleteTaxDoc         = errors.New("failed to delete tax document")
	ErrInvalidRequestBody           = errors.New("invalid request body")
)
