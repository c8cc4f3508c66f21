package models

// SignupResponse represents the response after an accepted signup
type SignupResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"` // Echoed exactly as submitted
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}
