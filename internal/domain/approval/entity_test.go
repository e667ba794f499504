package approval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_Approve(t *testing.T) {
	at := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	s := State{Status: StatusPending}

	require.NoError(t, s.Approve("approver", at))
	assert.Equal(t, StatusApproved, s.Status)
	require.NotNil(t, s.ApproverID)
	assert.Equal(t, "approver", *s.ApproverID)
	assert.Equal(t, at, *s.ApprovedAt)

	err := s.Approve("other", at.Add(time.Hour))
	assert.ErrorIs(t, err, ErrRequestNotPending)
	assert.Equal(t, "approver", *s.ApproverID)
	assert.Equal(t, at, *s.ApprovedAt)
}

func TestState_Reject(t *testing.T) {
	s := State{Status: StatusPending}

	assert.ErrorIs(t, s.Reject("approver", "   "), ErrRejectionReasonRequired)
	assert.True(t, s.IsPending())

	require.NoError(t, s.Reject("approver", "  overlapping schedule "))
	assert.Equal(t, StatusRejected, s.Status)
	assert.Equal(t, "overlapping schedule", *s.RejectionReason)
	assert.Nil(t, s.ApprovedAt)

	assert.ErrorIs(t, s.Reject("approver", "again"), ErrRequestNotPending)
	assert.ErrorIs(t, s.Approve("approver", time.Now()), ErrRequestNotPending)
}

func TestRejectRequest_Validate(t *testing.T) {
	req := RejectRequest{RejectionReason: " "}
	assert.Error(t, req.Validate())

	req.RejectionReason = "no"
	assert.NoError(t, req.Validate())
}
