package domain

import (
	"testing"

	"github.com/luckygram/backend/internal/domain/statistic"
	"github.com/luckygram/backend/internal/entity"
	"github.com/luckygram/backend/internal/model"
	"github.com/luckygram/backend/internal/repository"
	"github.com/luckygram/backend/pkg/errorx"
	"github.com/luckygram/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func newTestInvitationDomain() *invitationDomain {
	userRepo := repository.NewUserRepository()
	return NewInvitationDomain(
		userRepo,
		repository.NewInvitationRepository(),
		statistic.New(userRepo, testutil.NewInMemoryRedisClient()),
	)
}

func Test_invitationDomain_IssueCode(t *testing.T) {
	ctx := testutil.MockContext()
	invitationDomain := newTestInvitationDomain()

	user, err := testutil.SampleUser(ctx, nil)
	require.NoError(t, err)

	resp, err := invitationDomain.IssueCode(ctx, &model.IssueInviteCodeRequest{
		TelegramID: user.TelegramID,
	})
	require.NoError(t, err)
	require.Len(t, resp.Code, 8)

	// Issuing again returns the same code.
	again, err := invitationDomain.IssueCode(ctx, &model.IssueInviteCodeRequest{
		TelegramID: user.TelegramID,
	})
	require.NoError(t, err)
	require.Equal(t, resp.Code, again.Code)

	_, err = invitationDomain.IssueCode(ctx, &model.IssueInviteCodeRequest{TelegramID: 999999})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.UnknownUser})
}

func Test_invitationDomain_Redeem(t *testing.T) {
	ctx := testutil.MockContext()
	invitationDomain := newTestInvitationDomain()

	inviter, err := testutil.SampleUser(ctx, &entity.User{Name: "inviter"})
	require.NoError(t, err)

	invitee, err := testutil.SampleUser(ctx, nil)
	require.NoError(t, err)

	issued, err := invitationDomain.IssueCode(ctx, &model.IssueInviteCodeRequest{
		TelegramID: inviter.TelegramID,
	})
	require.NoError(t, err)

	_, err = invitationDomain.Redeem(ctx, &model.RedeemInviteCodeRequest{
		Code: "NOTACODE", InviteeID: invitee.TelegramID,
	})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.InvalidCode})

	_, err = invitationDomain.Redeem(ctx, &model.RedeemInviteCodeRequest{
		Code: issued.Code, InviteeID: inviter.TelegramID,
	})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.SelfInvite})

	resp, err := invitationDomain.Redeem(ctx, &model.RedeemInviteCodeRequest{
		Code: issued.Code, InviteeID: invitee.TelegramID,
	})
	require.NoError(t, err)
	require.Equal(t, inviter.TelegramID, resp.InviterID)
	require.Equal(t, "inviter", resp.InviterName)
	require.Equal(t, float64(20), resp.Reward)

	// The inviter was credited.
	userRepo := repository.NewUserRepository()
	got, err := userRepo.GetByTelegramID(ctx, inviter.TelegramID)
	require.NoError(t, err)
	require.Equal(t, float64(20), got.Points)

	// The first invitation wins for all time, even with a different code.
	other, err := testutil.SampleUser(ctx, nil)
	require.NoError(t, err)

	otherIssued, err := invitationDomain.IssueCode(ctx, &model.IssueInviteCodeRequest{
		TelegramID: other.TelegramID,
	})
	require.NoError(t, err)

	_, err = invitationDomain.Redeem(ctx, &model.RedeemInviteCodeRequest{
		Code: otherIssued.Code, InviteeID: invitee.TelegramID,
	})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.AlreadyInvited})

	// No double credit happened.
	got, err = userRepo.GetByTelegramID(ctx, inviter.TelegramID)
	require.NoError(t, err)
	require.Equal(t, float64(20), got.Points)

	issued, err = invitationDomain.IssueCode(ctx, &model.IssueInviteCodeRequest{
		TelegramID: inviter.TelegramID,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), issued.InvitedPeople)
}
