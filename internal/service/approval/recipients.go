package approval

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/approval"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/notification"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/user"
)

// ApproverIDs returns the users who may decide on a request filed in
// requesterBU: every admin plus the managers of that business unit. The
// requester is left out.
func ApproverIDs(ctx context.Context, users user.UserRepository, requesterBU, requesterID string) ([]string, error) {
	admins, err := users.ListByRole(ctx, user.RoleAdmin, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}

	var managers []user.AppUser
	if requesterBU != "" {
		managers, err = users.ListByRole(ctx, user.RoleManager, &requesterBU)
		if err != nil {
			return nil, fmt.Errorf("failed to list managers: %w", err)
		}
	}

	seen := make(map[string]bool)
	var ids []string
	for _, u := range append(admins, managers...) {
		if u.ID == requesterID || seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		ids = append(ids, u.ID)
	}
	return ids, nil
}

// DecisionNotification builds the message sent to a requester once their
// request has been decided.
func DecisionNotification(req approval.Request, action approval.Action, label, entityType, actionURL string) notification.CreateNotificationRequest {
	n := notification.CreateNotificationRequest{
		UserID:     req.RequesterID,
		EntityType: entityType,
		EntityID:   req.ID,
		ActionURL:  actionURL,
	}
	if action == approval.ActionApprove {
		n.Title = label + " 승인"
		n.Message = fmt.Sprintf("%s 요청이 승인되었습니다.", label)
		n.Level = notification.LevelSuccess
		return n
	}

	n.Title = label + " 반려"
	n.Message = fmt.Sprintf("%s 요청이 반려되었습니다.", label)
	if req.RejectionReason != nil {
		n.Message += " 사유: " + *req.RejectionReason
	}
	n.Level = notification.LevelWarning
	return n
}
