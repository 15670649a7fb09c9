// Package card maps catalog products onto the fields rendered by a dashboard card.
package card

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/carlux/carlux-inventory/internal/catalog"
)

// SkeletonCount is the number of placeholder cards shown while the catalog loads.
const SkeletonCount = 8

const (
	unknownBrand        = "—"
	defaultCategory     = "Vehicle"
	ratingUnavailable   = "N/A"
	defaultAvailability = "Available"
	tagSeparator        = " • "
	tagOverflow         = " • …"
	maxTags             = 2
)

// View is the render-ready form of one product.
type View struct {
	ID           int64
	Title        string
	Description  string
	ImageURL     string
	HasImage     bool
	ImageAlt     string
	Brand        string
	Category     string
	Price        string
	Rating       string
	StockLabel   string
	HasStock     bool
	Tags         string
	HasTags      bool
	Availability string
}

// Skeleton is a placeholder card with no data dependency.
type Skeleton struct {
	Index int
}

// FromProduct builds the card view for p, substituting fallbacks for missing fields.
func FromProduct(p catalog.Product) View {
	v := View{
		ID:           p.ID,
		Title:        p.Title,
		Brand:        valueOr(p.Brand, unknownBrand),
		Category:     valueOr(p.Category, defaultCategory),
		Price:        FormatPrice(p.Price),
		Rating:       ratingUnavailable,
		Availability: valueOr(p.AvailabilityStatus, defaultAvailability),
	}
	if p.Description != nil {
		v.Description = *p.Description
	}

	v.ImageURL = imageSource(p)
	v.HasImage = v.ImageURL != ""
	v.ImageAlt = p.Title + " – " + v.Brand

	if p.Rating != nil {
		v.Rating = FormatRating(*p.Rating)
	}
	if p.Stock != nil {
		v.HasStock = true
		v.StockLabel = fmt.Sprintf("%d in stock", *p.Stock)
	}
	if len(p.Tags) > 0 {
		v.HasTags = true
		v.Tags = joinTags(p.Tags)
	}
	return v
}

// FromProducts maps every product in order.
func FromProducts(products []catalog.Product) []View {
	out := make([]View, 0, len(products))
	for _, p := range products {
		out = append(out, FromProduct(p))
	}
	return out
}

// Skeletons returns n placeholder cards.
func Skeletons(n int) []Skeleton {
	out := make([]Skeleton, n)
	for i := range out {
		out[i].Index = i
	}
	return out
}

// FormatPrice renders an amount in dollars with English digit grouping.
func FormatPrice(price float64) string {
	p := message.NewPrinter(language.English)
	if price == math.Trunc(price) {
		return p.Sprintf("$%.0f", price)
	}
	return p.Sprintf("$%.2f", price)
}

// FormatRating renders a rating with one decimal, rounding halves up.
func FormatRating(rating float64) string {
	return fmt.Sprintf("%.1f", math.Floor(rating*10+0.5)/10)
}

func imageSource(p catalog.Product) string {
	if p.Thumbnail != "" {
		return p.Thumbnail
	}
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}

func joinTags(tags []string) string {
	shown := tags
	if len(shown) > maxTags {
		shown = shown[:maxTags]
	}
	joined := strings.Join(shown, tagSeparator)
	if len(tags) > maxTags {
		joined += tagOverflow
	}
	return joined
}

func valueOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
