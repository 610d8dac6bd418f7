package transport

// Pagination mirrors the meta block of paginated list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// Response is the success envelope every ESMS endpoint wraps its payload in.
// A success status with no body decodes to the zero value of T.
type Response[T any] struct {
	Data    T           `json:"data"`
	Meta    *Pagination `json:"meta,omitempty"`
	Message string      `json:"message,omitempty"`
}

type errorEnvelope struct {
	Error struct {
		Status  int      `json:"status"`
		Message string   `json:"message"`
		Details []Detail `json:"details,omitempty"`
	} `json:"error"`
	TraceID string `json:"traceId,omitempty"`
}
