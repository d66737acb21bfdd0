// Package catalog holds the product and category records the storefront
// sells, plus the repository contracts for reading and administering them.
package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a requested product does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrCategoryNotFound is returned when a requested category does not exist.
	ErrCategoryNotFound = errors.New("category not found")
)

// ValidationError describes a rejected product or category write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// Product represents a catalog item available for purchase. Price is a whole
// or fractional rupee amount; OriginalPrice, when set, is the pre-discount
// price shown struck through on product cards.
type Product struct {
	ID             string
	Name           string
	Category       string
	Price          decimal.Decimal
	OriginalPrice  *decimal.Decimal
	Image          string
	Images         []string
	Description    string
	Specifications map[string]string
	InStock        bool
	Featured       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasDiscount reports whether the product carries a meaningful discount,
// i.e. an original price strictly above the current price. Rows where the
// original price is not above the current price render without a discount
// instead of erroring.
func (p Product) HasDiscount() bool {
	return p.OriginalPrice != nil && p.OriginalPrice.GreaterThan(p.Price)
}

// Validate checks the invariants enforced on admin product writes.
func (p Product) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if strings.TrimSpace(p.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(p.Category) == "" {
		return &ValidationError{Field: "category", Reason: "must not be empty"}
	}
	if !p.Price.IsPositive() {
		return &ValidationError{Field: "price", Reason: "must be greater than 0"}
	}
	if p.OriginalPrice != nil && p.OriginalPrice.LessThan(p.Price) {
		return &ValidationError{Field: "originalPrice", Reason: "must be at least the current price"}
	}
	return nil
}

// Category groups products for browsing.
type Category struct {
	ID           string
	Name         string
	Description  string
	Image        string
	DisplayOrder int
}

// Validate checks the invariants enforced on admin category writes.
func (c Category) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	return nil
}

// Filter narrows product listings. Zero values mean "no constraint".
type Filter struct {
	Category string
	Featured bool
	// Deals keeps only products whose original price exceeds the current price.
	Deals bool
	// Query is a free-text match against name and description.
	Query string
}

// Repository defines read and write operations for the product catalog.
type Repository interface {
	List(ctx context.Context, f Filter) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}

// CategoryRepository defines read and write operations for categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]Category, error)
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id string) error
}
