package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	// Platform bridge
	CodePlatformRequestFailed:  "Platform bridge request failed",
	CodePlatformUnauthorized:   "Platform bridge rejected the API key",
	CodeInventoryFetchFailed:   "Failed to fetch inventory",
	CodeOfferSubmitFailed:      "Failed to submit trade offer",
	CodeOfferAcceptFailed:      "Failed to accept trade offer",
	CodeOfferDeclineFailed:     "Failed to decline trade offer",
	CodeEscrowCheckFailed:      "Failed to read trade hold status",
	CodeEventDecodeFailed:      "Failed to decode platform event",
	CodeWebSocketConnectionErr: "WebSocket connection error",
	CodeWebSocketClosed:        "WebSocket connection closed",
	CodeWebSocketSendError:     "Failed to send WebSocket message",

	// Trade rules
	CodeInvalidQuantity:     "Quantity must be a positive whole number",
	CodeLimitExceeded:       "Quantity exceeds the per-trade limit",
	CodeInsufficientBalance: "Not enough gems for this trade",
	CodeInsufficientItems:   "Not enough items for this trade",
	CodeTradeHold:           "A trade hold is active",
	CodeOfferMalformed:      "Trade offer contents are not acceptable",
	CodeAmountMismatch:      "Offered amount does not match the rate",
	CodeRequestInFlight:     "A request for this party is already in progress",

	// Chat administration
	CodeInvalidSteamID: "Invalid SteamID64 format",
	CodeAdminProtected: "An admin cannot be blocked",
	CodeAlreadyBlocked: "Party is already blocked",
	CodeNotBlocked:     "Party is not in the block list",

	// Persistence
	CodeStorageError: "Persistent storage error",

	// Circuit breaker errors
	CodeCircuitOpen:     "Circuit breaker is open",
	CodeCircuitHalfOpen: "Circuit breaker is half-open",
}
