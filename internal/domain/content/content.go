// Package content manages the editable about-page copy.
package content

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned by repositories when no about content has been
// saved yet. Callers fall back to Default().
var ErrNotFound = errors.New("about content not found")

// About is the storefront's about-page content.
type About struct {
	ID        string
	Title     string
	Content   string
	UpdatedAt time.Time
}

// Default returns the built-in about content shown until an admin saves one.
func Default() About {
	return About{
		ID:    "default",
		Title: "About Us",
		Content: "We supply professional fitness equipment for commercial and " +
			"home gyms across the country, with installation and a full " +
			"manufacturer warranty on every machine.",
	}
}

// Repository persists the about content as a single row.
type Repository interface {
	Get(ctx context.Context) (*About, error)
	Upsert(ctx context.Context, a *About) error
}
