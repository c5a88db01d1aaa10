package dto

type IPNAckDTO struct {
	Success bool `json:"success"`
}
