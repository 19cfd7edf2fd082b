package rest

// ErrorResponse is the JSON body returned by all API handlers on failure.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	// NeedsReconnect tells the client that the stored calendar authorization
	// is no longer usable and the user has to go through consent again.
	NeedsReconnect bool `json:"needsReconnect,omitempty"`
}
