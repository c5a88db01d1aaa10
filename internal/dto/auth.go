package dto

// Login doubles as the contact email: order confirmations and the
// mailing-list upsert go to this address after a completed payment.
type RegisterRequestDTO struct {
	Login    string `json:"login" validate:"required,email" example:"player@example.com"`
	Password string `json:"password" validate:"required,min=8"`
}

type RegisterResponseDTO struct {
	Message string `json:"message"`
}

type LoginRequestDTO struct {
	Login    string `json:"login" validate:"required,email" example:"player@example.com"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginResponseDTO struct {
	Message string `json:"message"`
}
