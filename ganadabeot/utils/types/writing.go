package types

// WritingRequest is the first frame a client sends on /ws.
type WritingRequest struct {
	Mode string `json:"mode"`
	Text string `json:"text"`
}

// Event types sent back over /ws.
const (
	EventProgress = "progress"
	EventResult   = "result"
	EventError    = "error"
)

// WritingEvent is one server frame on /ws.
type WritingEvent struct {
	Type    string `json:"type"`
	Stage   string `json:"stage,omitempty"`
	Status  string `json:"status,omitempty"`
	Poll    int    `json:"poll,omitempty"`
	Text    string `json:"text,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the JSON body for API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WritingResponse answers a JSON POST to /review or /generate.
type WritingResponse struct {
	Mode string `json:"mode"`
	Text string `json:"text"`
}
