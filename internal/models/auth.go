package models

// GoogleLoginRequest carries the Google Identity Services credential to the backend.
type GoogleLoginRequest struct {
	Credential string `json:"credential"`
}

// AuthResponse is returned by the backend after a successful identity exchange.
type AuthResponse struct {
	Token    string `json:"token"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	FullName string `json:"fullName,omitempty"`
}

// MessageResponse is the backend's acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the backend's business error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
