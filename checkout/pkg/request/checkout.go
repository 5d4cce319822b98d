package request

import "github.com/google/uuid"

type Checkout struct {
	AddressID     uuid.UUID `json:"addressId"     validate:"required"`
	PaymentMethod string    `json:"paymentMethod" validate:"required,oneof=online cod"`
}
