package apperrors

import "errors"

// Domain entity errors represent missing entities in the system.
var (
	// ErrPortfolioNotFound indicates that a portfolio with the given ID does not exist.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrPositionNotFound indicates that a position for the given portfolio and security does not exist.
	ErrPositionNotFound = errors.New("position not found")

	// ErrTransactionNotFound indicates that a transaction with the given ID does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrSettingNotFound indicates that an application setting with the given key does not exist.
	ErrSettingNotFound = errors.New("setting not found")
)

// Business logic errors represent validation failures or constraint
// violations in the cost-basis engine.
var (
	// ErrInvalidTransaction indicates a malformed transaction: a buy or sell
	// missing its quantity, price, or trade date.
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrInsufficientLots indicates that a sell transaction asks for more
	// units than the open tax lots hold. The engine refuses to fabricate
	// negative inventory; the affected group fails rather than being clamped.
	ErrInsufficientLots = errors.New("sell quantity exceeds open lot inventory")

	// ErrUnknownMethod indicates an unsupported cost-basis method value.
	ErrUnknownMethod = errors.New("unknown cost basis method")

	// ErrLotNotFound indicates a specific-identification sell designated a
	// lot ID that is not in the open set.
	ErrLotNotFound = errors.New("designated tax lot not found")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrNegativeAmount indicates that an amount field has an invalid negative value.
	ErrNegativeAmount = errors.New("amount cannot be negative")
)

// Operation failure errors represent system-level failures when retrieving
// or processing data.
var (
	ErrFailedToRetrievePortfolios   = errors.New("failed to retrieve portfolios")
	ErrFailedToRetrievePositions    = errors.New("failed to retrieve positions")
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToRetrieveTransaction  = errors.New("failed to retrieve transaction")
	ErrFailedToGenerateReport       = errors.New("failed to generate cost basis report")
	ErrFailedToExportReport         = errors.New("failed to export cost basis report")
	ErrFailedToRefreshPrices        = errors.New("failed to refresh position prices")
	ErrFailedToGetVersionInfo       = errors.New("failed to get version information")
)

// Data integrity errors represent inconsistencies in the data.
var (
	// ErrPositionMismatch indicates that the open-lot quantity derived from
	// the transaction log does not reconcile with the position snapshot the
	// custodian reports. This is surfaced, never silently resolved.
	ErrPositionMismatch = errors.New("open lots do not reconcile with position quantity")

	// ErrMissingRequiredField indicates that a required field is missing or empty.
	ErrMissingRequiredField = errors.New("missing required field")
)
