package repository

import (
	"context"

	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/model"
)

// NoteRepository is the read side of the catalog this core depends on.
type NoteRepository interface {
	// FindPublic returns public metadata only; it never reads the file reference.
	FindPublic(ctx context.Context, tx Tx, id string) (*model.Note, error)
	// FindAssetRef returns the stored reference of the protected file.
	FindAssetRef(ctx context.Context, tx Tx, id string) (string, error)
}

// ProfileRepository resolves roles for authenticated users.
type ProfileRepository interface {
	FindByID(ctx context.Context, tx Tx, userID string) (*model.Profile, error)
	Save(ctx context.Context, tx Tx, p *model.Profile) error
}

// AppConfigRepository is the admin-tunable key/value store.
type AppConfigRepository interface {
	Get(ctx context.Context, tx Tx, key string) (string, error)
	Set(ctx context.Context, tx Tx, key, value string) error
}
