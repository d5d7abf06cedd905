// Package recipe provides the application layer for the recipe gallery
// This implements the use cases defined in the inbound ports
package recipe

import (
	"context"
	stderrors "errors"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pastaboard/pastaboard/internal/domain/recipe"
	"github.com/pastaboard/pastaboard/internal/ports/inbound"
	"github.com/pastaboard/pastaboard/internal/ports/outbound"
	"github.com/pastaboard/pastaboard/pkg/errors"
	"github.com/pastaboard/pastaboard/pkg/filename"
)

// uploadForm is the part of an upload that decides whether it is kept
type uploadForm struct {
	Filename string `validate:"required,sanitized_filename"`
	Content  string `validate:"required"`
}

// RecipeService implements the recipe use cases
type RecipeService struct {
	entries  outbound.EntryRepository
	images   outbound.ImageStorage
	drafts   inbound.DraftService
	catalog  *recipe.Catalog
	validate *validator.Validate
	now      func() time.Time
	logger   *zap.Logger
}

// NewRecipeService creates a new recipe service
func NewRecipeService(
	entries outbound.EntryRepository,
	images outbound.ImageStorage,
	drafts inbound.DraftService,
	catalog *recipe.Catalog,
	logger *zap.Logger,
) *RecipeService {
	validate := validator.New()
	_ = validate.RegisterValidation("sanitized_filename", validateSanitizedFilename)

	return &RecipeService{
		entries:  entries,
		images:   images,
		drafts:   drafts,
		catalog:  catalog,
		validate: validate,
		now:      time.Now,
		logger:   logger.Named("recipe-service"),
	}
}

var _ inbound.RecipeService = (*RecipeService)(nil)

// Upload saves the photo and appends a recipe entry. Submissions without
// a file, with an unusable filename or without content are dropped
// without error.
func (s *RecipeService) Upload(ctx context.Context, cmd inbound.UploadCommand) (*inbound.UploadResult, error) {
	if cmd.File == nil || cmd.Filename == "" {
		return s.drop(cmd, inbound.DropMissingFile), nil
	}

	form := uploadForm{
		Filename: filename.Sanitize(cmd.Filename),
		Content:  valueOr(cmd.Content, ""),
	}
	if err := s.validate.Struct(form); err != nil {
		var validationErrors validator.ValidationErrors
		if !stderrors.As(err, &validationErrors) {
			return nil, errors.Wrap(err, "failed to validate upload")
		}
		// Content is reported before the filename
		reason := inbound.DropInvalidFilename
		for _, fieldErr := range validationErrors {
			if fieldErr.Field() == "Content" {
				reason = inbound.DropMissingContent
			}
		}
		return s.drop(cmd, reason), nil
	}

	countsText, err := s.drafts.GetCounts(ctx, cmd.SessionID)
	if err != nil {
		return nil, errors.NewStorageError("load draft counts", err)
	}
	counts, err := recipe.ParseCounts(countsText)
	if err != nil {
		s.logger.Error("Draft counts are not valid JSON",
			zap.String("session_id", cmd.SessionID),
			zap.Error(err),
		)
		return nil, errors.NewInvalidCountsError(err)
	}

	entry, err := recipe.NewEntry(
		form.Filename,
		valueOr(cmd.Title, recipe.DefaultTitle),
		valueOr(cmd.Author, recipe.DefaultAuthor),
		form.Content,
		counts,
		s.now(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create recipe entry")
	}

	if err := s.images.Save(ctx, entry.Filename, cmd.File); err != nil {
		return nil, errors.NewStorageError("save image", err)
	}
	if err := s.entries.Append(ctx, entry); err != nil {
		return nil, errors.NewStorageError("append recipe entry", err)
	}

	s.logger.Info("Recipe posted",
		zap.String("filename", entry.Filename),
		zap.String("title", entry.Title),
		zap.Int("ingredients", len(counts)),
	)

	return &inbound.UploadResult{Saved: true, Filename: entry.Filename}, nil
}

// Gallery lists stored images dealt into three columns
func (s *RecipeService) Gallery(ctx context.Context) (*inbound.GalleryView, error) {
	names, err := s.images.List(ctx)
	if err != nil {
		return nil, errors.NewStorageError("list images", err)
	}

	view := &inbound.GalleryView{Total: len(names)}
	for i, column := range recipe.GalleryColumns(names) {
		tiles := make([]inbound.GalleryTile, 0, len(column))
		for _, name := range column {
			tiles = append(tiles, inbound.GalleryTile{
				Filename:  name,
				ImageURL:  s.images.URL(name),
				DetailURL: "/recipe/" + url.PathEscape(name),
			})
		}
		view.Columns[i] = tiles
	}

	return view, nil
}

// Detail loads the earliest entry stored under filename
func (s *RecipeService) Detail(ctx context.Context, name string) (*inbound.RecipeView, error) {
	entry, err := s.entries.FindByFilename(ctx, name)
	switch {
	case stderrors.Is(err, recipe.ErrEntryNotFound):
		return nil, errors.NewRecipeNotFoundError(name)
	case stderrors.Is(err, recipe.ErrCorruptRecord):
		s.logger.Error("Record store is corrupt", zap.String("filename", name), zap.Error(err))
		return nil, errors.NewCorruptRecordError(err)
	case err != nil:
		return nil, errors.NewStorageError("find recipe entry", err)
	}

	return &inbound.RecipeView{
		Filename:    entry.Filename,
		Title:       entry.Title,
		Author:      entry.Author,
		Date:        entry.Date(),
		ImageURL:    s.images.URL(entry.Filename),
		Ingredients: s.catalog.Display(entry.Counts),
		ContentHTML: recipe.ContentHTML(entry.Content),
	}, nil
}

// Ingredients returns the catalog in counter-page order
func (s *RecipeService) Ingredients() []recipe.IngredientSpec {
	return s.catalog.Specs()
}

func (s *RecipeService) drop(cmd inbound.UploadCommand, reason inbound.DropReason) *inbound.UploadResult {
	s.logger.Debug("Upload ignored",
		zap.String("reason", string(reason)),
		zap.String("client_filename", cmd.Filename),
	)
	return &inbound.UploadResult{Dropped: reason}
}

func validateSanitizedFilename(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	return name != "" && filename.Sanitize(name) == name
}

func valueOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}
