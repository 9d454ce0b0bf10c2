package server

// APIError is the JSON body of every non-2xx response.
type APIError struct {
	Code    string      `json:"code"`              // application error code, e.g. "VALIDATION_ERROR"
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // per-field failures or the underlying reason
}

// Application error codes.
const (
	ErrorCodeInternalServerError = "INTERNAL_SERVER_ERROR"
	ErrorCodeServiceUnavailable  = "SERVICE_UNAVAILABLE"

	ErrorCodeValidation      = "VALIDATION_ERROR"
	ErrorCodeInvalidJSON     = "INVALID_JSON"
	ErrorCodeInvalidDate     = "INVALID_DATE"
	ErrorCodeValueOutOfRange = "VALUE_OUT_OF_RANGE"
	ErrorCodeInvalidEnum     = "INVALID_ENUM_VALUE"

	ErrorCodeNoData = "NO_DATA"
)
