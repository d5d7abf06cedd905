package gorm

import "github.com/pastaboard/pastaboard/internal/domain/recipe"

// EntryToModel converts a domain entry to a GORM model
func EntryToModel(e *recipe.Entry) *EntryModel {
	return &EntryModel{
		Filename:  e.Filename,
		Title:     e.Title,
		Author:    e.Author,
		Content:   e.Content,
		Timestamp: e.Timestamp,
		Counts:    CountsJSON(e.Counts),
	}
}

// ModelToEntry converts a GORM model to a domain entry
func ModelToEntry(m *EntryModel) *recipe.Entry {
	counts := recipe.Counts(m.Counts)
	if counts == nil {
		counts = recipe.Counts{}
	}
	return &recipe.Entry{
		Filename:  m.Filename,
		Title:     m.Title,
		Author:    m.Author,
		Content:   m.Content,
		Timestamp: m.Timestamp,
		Counts:    counts,
	}
}
