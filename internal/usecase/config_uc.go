package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hemanthreddykoduru/StudentNotes/internal/domain"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/model"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/ports/repository"
	"github.com/hemanthreddykoduru/StudentNotes/internal/infra/logging"
)

// Compile-time check
var _ ConfigUseCase = (*configUC)(nil)

// ConfigUseCase serves the admin-tunable key/value settings.
type ConfigUseCase interface {
	// Get is public. subscription_price falls back to its default when unset.
	Get(ctx context.Context, key string) (string, error)
	// Set requires the caller to be an admin.
	Set(ctx context.Context, userID, key, value string) error
}

type configUC struct {
	store repository.AppConfigRepository
	roles roleAuthority
	log   *zerolog.Logger
}

func NewConfigUseCase(store repository.AppConfigRepository, profiles repository.ProfileRepository, logger *zerolog.Logger) *configUC {
	return &configUC{store: store, roles: roleAuthority{profiles: profiles}, log: logger}
}

func (u *configUC) Get(ctx context.Context, key string) (string, error) {
	defer logging.TraceDuration(u.log, "ConfigUC.Get")()
	key = strings.TrimSpace(key)
	if key == "" {
		return "", domain.ErrInvalidArgument
	}
	v, err := u.store.Get(ctx, repository.NoTX, key)
	if errors.Is(err, domain.ErrNotFound) && key == model.ConfigSubscriptionPrice {
		return strconv.Itoa(model.DefaultSubscriptionPriceRupees), nil
	}
	return v, err
}

func (u *configUC) Set(ctx context.Context, userID, key, value string) error {
	defer logging.TraceDuration(u.log, "ConfigUC.Set")()
	if userID == "" {
		return domain.ErrUnauthenticated
	}
	key, value = strings.TrimSpace(key), strings.TrimSpace(value)
	if key == "" || value == "" {
		return domain.ErrInvalidArgument
	}
	admin, err := u.roles.isAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if !admin {
		return domain.ErrForbidden
	}
	if key == model.ConfigSubscriptionPrice {
		a, err := model.ParseRupees(value)
		if err != nil || a <= 0 {
			return domain.ErrInvalidArgument
		}
	}
	if err := u.store.Set(ctx, repository.NoTX, key, value); err != nil {
		return err
	}
	logging.With(ctx, u.log).Info().Str("key", key).Str("value", value).Msg("app config updated")
	return nil
}
