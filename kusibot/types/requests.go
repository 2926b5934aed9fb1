package types

type RegisterRequest struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	IsProfessional bool   `json:"is_professional,omitempty"`
}

type LoginRequest struct {
	// Identifier is a username or an email.
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Response string `json:"response"`
}
