package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CartItem struct {
	ProductID      uuid.UUID       `json:"productId"      validate:"required"`
	Name           string          `json:"name"           validate:"required"`
	Unit           string          `json:"unit"`
	MRP            decimal.Decimal `json:"mrp"`
	SellingPrice   decimal.Decimal `json:"sellingPrice"   validate:"required"`
	Quantity       int64           `json:"quantity"       validate:"required,gt=0"`
	VATCategory    string          `json:"vatCategory"    validate:"omitempty,oneof=A B"`
	AvailableStock *int64          `json:"availableStock"`
	Image          string          `json:"image"`
}

// UpdateQuantity carries the new absolute quantity. Zero removes the item.
type UpdateQuantity struct {
	Quantity int64 `json:"quantity" validate:"gte=0"`
}

type ApplyPromo struct {
	Code string `json:"code" validate:"required,min=1,max=64"`
}
