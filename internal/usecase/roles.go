package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/hemanthreddykoduru/StudentNotes/internal/domain"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/model"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/ports/repository"
)

// roleAuthority is the only place that turns a user id into a role.
// A user without a profile row is an ordinary user.
type roleAuthority struct {
	profiles repository.ProfileRepository
}

func (r roleAuthority) isAdmin(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	p, err := r.profiles.FindByID(ctx, repository.NoTX, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("role lookup: %w", err)
	}
	return p.Role == model.RoleAdmin, nil
}
