package types

// SuccessEnvelope wraps every successful API payload. Warning carries the
// aggregate message for best-effort sub-operations that failed without
// failing the request.
type SuccessEnvelope struct {
	Data    any    `json:"data"`
	Warning string `json:"warning,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
