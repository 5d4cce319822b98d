package response

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Address struct {
	ID        uuid.UUID `json:"id"`
	Line1     string    `json:"line_1"`
	Line2     string    `json:"line_2,omitempty"`
	Line3     string    `json:"line_3,omitempty"`
	PostTown  string    `json:"post_town"`
	Pincode   string    `json:"pincode"`
	County    string    `json:"county,omitempty"`
	Landmark  string    `json:"landmark,omitempty"`
	IsDefault bool      `json:"isDefault"`
}

type DeliveryQuote struct {
	Fee  decimal.Decimal `json:"fee"`
	Zone string          `json:"zone"`
}
