package domain

import "time"

type Product struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Price       int64      `json:"price"`
	Stocks      int        `json:"stocks"`
	Picture     string     `json:"picture"`
	Status      bool       `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
}

// Candidate turns a product into a single-unit cart candidate.
func (p Product) Candidate() ItemCandidate {
	return ItemCandidate{
		Name:      p.Name,
		Picture:   p.Picture,
		UnitPrice: p.Price,
		Quantity:  1,
	}
}

type ProductInput struct {
	Name        string `validate:"required"`
	Description string
	Price       int64 `validate:"gte=0"`
	Stocks      int   `validate:"gte=0"`
	Picture     []byte
	PictureName string
}

type Page struct {
	Limit  int `validate:"gte=0"`
	Number int `validate:"gte=0"`
}

// PageCount returns how many pages of size limit are needed for total items.
func PageCount(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 1
	}
	return (total + limit - 1) / limit
}

type ProductQuery struct {
	SortBy   string `validate:"omitempty,oneof=price name createdAt"`
	OrderBy  string `validate:"omitempty,oneof=asc desc"`
	MinPrice int64  `validate:"gte=0"`
	MaxPrice int64  `validate:"gte=0"`
	Page
}

type ProductPage struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}
