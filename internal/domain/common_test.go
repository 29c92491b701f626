package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_isUniqueViolation(t *testing.T) {
	require.True(t, isUniqueViolation(
		errors.New("UNIQUE constraint failed: lottery_participants.lottery_id")))
	require.True(t, isUniqueViolation(
		errors.New("Error 1062: Duplicate entry '42' for key 'invitations.invitee_id'")))
	require.True(t, isUniqueViolation(
		fmt.Errorf("create: %w", errors.New("UNIQUE constraint failed: users.invite_code"))))

	require.False(t, isUniqueViolation(errors.New("database is locked")))
	require.False(t, isUniqueViolation(errors.New("record not found")))
}
