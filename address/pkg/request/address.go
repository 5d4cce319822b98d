package request

type Address struct {
	Line1    string `json:"line_1"    validate:"required,min=1,max=255"`
	Line2    string `json:"line_2"    validate:"max=255"`
	Line3    string `json:"line_3"    validate:"max=255"`
	PostTown string `json:"post_town" validate:"required,min=1,max=255"`
	Pincode  string `json:"pincode"   validate:"required,min=2,max=16"`
	County   string `json:"county"    validate:"max=255"`
	Landmark string `json:"landmark"  validate:"max=255"`
}
