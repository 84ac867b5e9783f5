package store

import (
	"context"

	"keijiban/models"
)

// Store is the single persistence unit for the whole board document.
//
// Load returns the current document, seeding the default the first time
// the backing storage is observed empty. Update runs fn over the current
// document and persists the result; implementations hold a single-writer
// lock for the whole read-modify-write, so concurrent updates in one
// process cannot lose each other. If fn returns an error nothing is
// written.
type Store interface {
	Load(ctx context.Context) (*models.Document, error)
	Update(ctx context.Context, fn func(*models.Document) error) error
}

// Seed builds the document a fresh store starts from.
type Seed func() *models.Document
