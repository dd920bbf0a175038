package models

// StreamResponse carries one chunk of a streamed completion.
type StreamResponse struct {
	Content string
	Done    bool
	Err     error
}

// AIError is the error envelope returned by provider HTTP APIs.
type AIError struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
		Status  string `json:"status"`
	} `json:"error"`
}
