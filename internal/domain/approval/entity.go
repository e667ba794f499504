package approval

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var Statuses = []string{string(StatusPending), string(StatusApproved), string(StatusRejected)}

// Kind tags which request table a workflow transition applies to.
type Kind string

const (
	KindWork         Kind = "work"
	KindCorrection   Kind = "correction"
	KindLeave        Kind = "leave"
	KindCompensatory Kind = "compensatory"
)

// State is the approval part shared by every approvable request.
type State struct {
	Status          Status
	ApproverID      *string
	ApprovedAt      *time.Time
	RejectionReason *string
}

func (s State) IsPending() bool {
	return s.Status == StatusPending
}

// Approve moves a pending request to approved.
func (s *State) Approve(approverID string, at time.Time) error {
	if !s.IsPending() {
		return ErrRequestNotPending
	}
	s.Status = StatusApproved
	s.ApproverID = &approverID
	s.ApprovedAt = &at
	s.RejectionReason = nil
	return nil
}

// Reject moves a pending request to rejected. The reason is trimmed and must not be empty.
func (s *State) Reject(approverID, reason string) error {
	if !s.IsPending() {
		return ErrRequestNotPending
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrRejectionReasonRequired
	}
	s.Status = StatusRejected
	s.ApproverID = &approverID
	s.RejectionReason = &reason
	return nil
}

// Request is the kind-independent view of an approvable request.
type Request struct {
	ID          string
	Kind        Kind
	RequesterID string
	// RequesterBU is the requester's business unit, the scope of approval rights.
	RequesterBU string
	State
	// Subject is the concrete request row (e.g. *leave.LeaveRequest) for hooks.
	Subject any
}

// Action is the transition being applied.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)
