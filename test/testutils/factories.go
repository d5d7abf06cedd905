// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/pastaboard/pastaboard/internal/domain/recipe"
)

// EntryBuilder provides a fluent interface for building test entries
type EntryBuilder struct {
	filename  string
	title     string
	author    string
	content   string
	counts    recipe.Counts
	createdAt time.Time
}

// NewEntryBuilder creates a new entry builder with random values
func NewEntryBuilder() *EntryBuilder {
	return NewEntryBuilderWithSeed(time.Now().UnixNano())
}

// NewEntryBuilderWithSeed creates a reproducible entry builder
func NewEntryBuilderWithSeed(seed int64) *EntryBuilder {
	faker := gofakeit.New(seed)
	catalog := recipe.DefaultCatalog().Keys()

	counts := recipe.Counts{}
	for i := 0; i < faker.Number(1, 4); i++ {
		counts[catalog[faker.Number(0, len(catalog)-1)]] = float64(faker.Number(1, 10))
	}

	return &EntryBuilder{
		filename:  strings.ToLower(faker.Noun()) + "_" + faker.DigitN(4) + ".jpg",
		title:     faker.Sentence(3),
		author:    faker.Name(),
		content:   faker.Sentence(6) + "\n" + faker.Sentence(6),
		counts:    counts,
		createdAt: faker.DateRange(time.Date(2020, 1, 1, 0, 0, 0, 0, time.Local), time.Date(2024, 12, 31, 0, 0, 0, 0, time.Local)),
	}
}

// WithFilename sets the filename
func (b *EntryBuilder) WithFilename(filename string) *EntryBuilder {
	b.filename = filename
	return b
}

// WithTitle sets the title
func (b *EntryBuilder) WithTitle(title string) *EntryBuilder {
	b.title = title
	return b
}

// WithAuthor sets the author
func (b *EntryBuilder) WithAuthor(author string) *EntryBuilder {
	b.author = author
	return b
}

// WithContent sets the content
func (b *EntryBuilder) WithContent(content string) *EntryBuilder {
	b.content = content
	return b
}

// WithCounts sets the ingredient counts
func (b *EntryBuilder) WithCounts(counts recipe.Counts) *EntryBuilder {
	b.counts = counts
	return b
}

// WithCreatedAt sets the creation time
func (b *EntryBuilder) WithCreatedAt(t time.Time) *EntryBuilder {
	b.createdAt = t
	return b
}

// Build creates the entry, panicking on invalid builder state
func (b *EntryBuilder) Build() *recipe.Entry {
	entry, err := recipe.NewEntry(b.filename, b.title, b.author, b.content, b.counts, b.createdAt)
	if err != nil {
		panic(err)
	}
	return entry
}

// FakeImage returns a few bytes that look like a JPEG header
func FakeImage() []byte {
	return []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}
