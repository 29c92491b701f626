package common

import (
	"context"
	"errors"

	"github.com/luckygram/backend/internal/entity"
	"github.com/luckygram/backend/internal/repository"
	"github.com/luckygram/backend/pkg/xcontext"
	"golang.org/x/exp/slices"
)

// AdminVerifier decides whether the acting user may run privileged
// operations. A user qualifies either by the ADMIN role stored in database or
// by being listed in the bot's static admin list.
type AdminVerifier struct {
	userRepo repository.UserRepository
}

func NewAdminVerifier(userRepo repository.UserRepository) *AdminVerifier {
	return &AdminVerifier{userRepo: userRepo}
}

func (verifier *AdminVerifier) Verify(ctx context.Context) error {
	userID := xcontext.RequestUserID(ctx)
	if slices.Contains(xcontext.Configs(ctx).Bot.AdminIDs, userID) {
		return nil
	}

	u, err := verifier.userRepo.GetByTelegramID(ctx, userID)
	if err != nil {
		return errors.New("user is not valid")
	}

	if u.Role != entity.AdminRole {
		return errors.New("user role does not have permission")
	}

	return nil
}
