package types

// OrderAddress is the shipping address copied onto an order at placement.
// It is a snapshot; later edits to the saved address never touch it.
type OrderAddress struct {
	FullName string  `json:"full_name"`
	Phone    string  `json:"phone"`
	Line1    string  `json:"line1"`
	Line2    *string `json:"line2,omitempty"`
	City     string  `json:"city"`
	State    string  `json:"state"`
	Pincode  string  `json:"pincode"`
	Country  string  `json:"country"`
}
