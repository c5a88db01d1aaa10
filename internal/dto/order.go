package dto

type GetOrdersResponseDTO struct {
	ID            string `json:"id"`
	Status        string `json:"status" example:"paid"`
	PaymentStatus string `json:"paymentStatus" example:"completed"`
	Subtotal      string `json:"subtotal" example:"100.00"`
	TotalAmount   string `json:"totalAmount" example:"85.00"`
	DeliveryShard string `json:"deliveryShard" example:"europa"`
	CreatedAt     string `json:"createdAt" example:"2024-12-09T16:09:57+03:00"`
}
