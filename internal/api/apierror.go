package api

// APIError is the error envelope of every 4xx/5xx response.
type APIError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

func newError(msg string) *APIError {
	return &APIError{Detail: msg}
}

func newValidation(fields map[string]string) *APIError {
	return &APIError{Detail: "Saisie invalide", Fields: fields}
}
