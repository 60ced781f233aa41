package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Trading error codes
const (
	// Platform bridge
	CodePlatformRequestFailed  Code = "PLATFORM_REQUEST_FAILED"
	CodePlatformUnauthorized   Code = "PLATFORM_UNAUTHORIZED"
	CodeInventoryFetchFailed   Code = "INVENTORY_FETCH_FAILED"
	CodeOfferSubmitFailed      Code = "OFFER_SUBMIT_FAILED"
	CodeOfferAcceptFailed      Code = "OFFER_ACCEPT_FAILED"
	CodeOfferDeclineFailed     Code = "OFFER_DECLINE_FAILED"
	CodeEscrowCheckFailed      Code = "ESCROW_CHECK_FAILED"
	CodeEventDecodeFailed      Code = "EVENT_DECODE_FAILED"
	CodeWebSocketConnectionErr Code = "WEBSOCKET_CONNECTION_ERROR"
	CodeWebSocketClosed        Code = "WEBSOCKET_CLOSED"
	CodeWebSocketSendError     Code = "WEBSOCKET_SEND_ERROR"

	// Trade rules
	CodeInvalidQuantity     Code = "INVALID_QUANTITY"
	CodeLimitExceeded       Code = "LIMIT_EXCEEDED"
	CodeInsufficientBalance Code = "INSUFFICIENT_BALANCE"
	CodeInsufficientItems   Code = "INSUFFICIENT_ITEMS"
	CodeTradeHold           Code = "TRADE_HOLD"
	CodeOfferMalformed      Code = "OFFER_MALFORMED"
	CodeAmountMismatch      Code = "AMOUNT_MISMATCH"
	CodeRequestInFlight     Code = "REQUEST_IN_FLIGHT"

	// Chat administration
	CodeInvalidSteamID Code = "INVALID_STEAM_ID"
	CodeAdminProtected Code = "ADMIN_PROTECTED"
	CodeAlreadyBlocked Code = "ALREADY_BLOCKED"
	CodeNotBlocked     Code = "NOT_BLOCKED"

	// Persistence
	CodeStorageError Code = "STORAGE_ERROR"

	// Circuit breaker errors
	CodeCircuitOpen     Code = "CIRCUIT_OPEN"
	CodeCircuitHalfOpen Code = "CIRCUIT_HALF_OPEN"
)
