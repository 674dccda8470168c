//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/hemanthreddykoduru/StudentNotes/internal/domain"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/model"
	"github.com/hemanthreddykoduru/StudentNotes/internal/usecase"
)

func TestConfigUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("unset subscription price reads as the default", func(t *testing.T) {
		uc := usecase.NewConfigUseCase(NewMockAppConfigRepo(), NewMockProfileRepo(), newTestLogger())
		v, err := uc.Get(ctx, model.ConfigSubscriptionPrice)
		if err != nil || v != "100" {
			t.Fatalf("expected 100, got %q err=%v", v, err)
		}
	})

	t.Run("other unset keys are not found", func(t *testing.T) {
		uc := usecase.NewConfigUseCase(NewMockAppConfigRepo(), NewMockProfileRepo(), newTestLogger())
		if _, err := uc.Get(ctx, "banner"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("only admins may set", func(t *testing.T) {
		store := NewMockAppConfigRepo()
		uc := usecase.NewConfigUseCase(store, NewMockProfileRepo("admin-1"), newTestLogger())
		if err := uc.Set(ctx, "user-1", model.ConfigSubscriptionPrice, "149"); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
		if err := uc.Set(ctx, "admin-1", model.ConfigSubscriptionPrice, "149"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if v, _ := uc.Get(ctx, model.ConfigSubscriptionPrice); v != "149" {
			t.Errorf("expected 149, got %q", v)
		}
	})

	t.Run("price must be a positive amount", func(t *testing.T) {
		uc := usecase.NewConfigUseCase(NewMockAppConfigRepo(), NewMockProfileRepo("admin-1"), newTestLogger())
		for _, v := range []string{"0", "-5", "abc"} {
			if err := uc.Set(ctx, "admin-1", model.ConfigSubscriptionPrice, v); !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("%q: expected ErrInvalidArgument, got %v", v, err)
			}
		}
	})
}
