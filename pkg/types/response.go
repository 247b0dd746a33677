package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// ListEnvelope wraps cursor-paginated collections. NextCursor is empty when
// the listing is exhausted.
type ListEnvelope struct {
	Data       any    `json:"data"`
	NextCursor string `json:"next_cursor,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
