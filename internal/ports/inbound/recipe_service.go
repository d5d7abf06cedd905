// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"
	"io"

	"github.com/pastaboard/pastaboard/internal/domain/recipe"
)

// RecipeService defines the use cases of the recipe gallery
// This is the primary port that HTTP handlers will use
type RecipeService interface {
	// Commands - operations that modify state
	Upload(ctx context.Context, cmd UploadCommand) (*UploadResult, error)

	// Queries - operations that read state
	Gallery(ctx context.Context) (*GalleryView, error)
	Detail(ctx context.Context, filename string) (*RecipeView, error)
	Ingredients() []recipe.IngredientSpec
}

// DraftService keeps the ingredient selection of each browser session
type DraftService interface {
	// SetCounts stores countsJSON verbatim, replacing any earlier selection
	SetCounts(ctx context.Context, sessionID, countsJSON string) error

	// GetCounts returns the stored text, or "{}" when nothing is stored
	GetCounts(ctx context.Context, sessionID string) (string, error)
}

// UploadCommand carries one multipart submission. Nil text fields were
// absent from the form; non-nil empty strings were sent empty.
type UploadCommand struct {
	SessionID string
	Filename  string
	File      io.Reader
	Title     *string
	Author    *string
	Content   *string
}

// DropReason explains why an upload was ignored without error
type DropReason string

const (
	DropNone            DropReason = ""
	DropMissingFile     DropReason = "missing_file"
	DropMissingContent  DropReason = "missing_content"
	DropInvalidFilename DropReason = "invalid_filename"
)

// UploadResult reports what happened to a submission
type UploadResult struct {
	Saved    bool
	Filename string
	Dropped  DropReason
}

// GalleryTile is one image on the front page
type GalleryTile struct {
	Filename  string
	ImageURL  string
	DetailURL string
}

// GalleryView holds the three gallery columns, filled round-robin
type GalleryView struct {
	Columns [3][]GalleryTile
	Total   int
}

// RecipeView is everything the detail page shows
type RecipeView struct {
	Filename    string
	Title       string
	Author      string
	Date        string
	ImageURL    string
	Ingredients []recipe.IngredientLine
	ContentHTML string
}
