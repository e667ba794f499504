package approval

import (
	"time"

	"github.com/cmlabs-hris/erp-attendance/internal/pkg/validator"
)

type RejectRequest struct {
	ID              string `json:"-"`
	RejectionReason string `json:"rejection_reason"`
}

func (r *RejectRequest) Validate() error {
	var errs validator.ValidationErrors
	errs.Required("rejection_reason", r.RejectionReason)
	return errs.Err()
}

type StateResponse struct {
	Status          Status     `json:"status"`
	ApproverID      *string    `json:"approver_id"`
	ApprovedAt      *time.Time `json:"approved_at"`
	RejectionReason *string    `json:"rejection_reason"`
}

func (s State) Response() StateResponse {
	return StateResponse{
		Status:          s.Status,
		ApproverID:      s.ApproverID,
		ApprovedAt:      s.ApprovedAt,
		RejectionReason: s.RejectionReason,
	}
}
