package notification

// StreamTokenResponse carries a short-lived token for the event stream.
type StreamTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}
