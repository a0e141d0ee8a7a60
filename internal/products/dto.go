package products

import (
	"github.com/epartnic/epartnic-backend/pkg/db/models"
)

// Filters narrows the public catalog listing. Zero values mean "any".
type Filters struct {
	Category string
	Brand    string
	Make     string
	Model    string
	Year     int
	Featured *bool
}

// ProductList is one page of products plus the cursor for the next page.
type ProductList struct {
	Products   []models.Product `json:"products"`
	NextCursor string           `json:"next_cursor,omitempty"`
}
