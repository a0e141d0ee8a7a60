package types

import "strings"

// Vehicle describes the fitment a part is compatible with.
type Vehicle struct {
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  int    `json:"year"`
}

// IsZero reports whether no fitment data was supplied.
func (v Vehicle) IsZero() bool {
	return strings.TrimSpace(v.Make) == "" && strings.TrimSpace(v.Model) == "" && v.Year == 0
}
