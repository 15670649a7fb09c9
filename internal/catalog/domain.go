package catalog

// Product is one vehicle entry returned by the catalog endpoint.
// Optional attributes are pointers so that an absent field stays distinct from a zero value.
type Product struct {
	ID                 int64    `json:"id" validate:"gte=0"`
	Title              string   `json:"title" validate:"required"`
	Description        *string  `json:"description,omitempty"`
	Category           *string  `json:"category,omitempty"`
	Price              float64  `json:"price" validate:"gte=0"`
	DiscountPercentage *float64 `json:"discountPercentage,omitempty"`
	Rating             *float64 `json:"rating,omitempty"`
	Stock              *int     `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Tags               []string `json:"tags,omitempty"`
	Brand              *string  `json:"brand,omitempty"`
	AvailabilityStatus *string  `json:"availabilityStatus,omitempty"`
	Thumbnail          string   `json:"thumbnail"`
	Images             []string `json:"images"`
}

// Response is the envelope of one catalog fetch.
type Response struct {
	Products []Product `json:"products" validate:"required,dive"`
	Total    *int      `json:"total,omitempty" validate:"omitempty,gte=0"`
	Skip     *int      `json:"skip,omitempty"`
	Limit    *int      `json:"limit,omitempty"`
}
