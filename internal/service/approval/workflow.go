package approval

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/approval"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/user"
)

// Handler wires one request kind into the workflow.
type Handler struct {
	Store approval.Store
	// OnApprove runs in the decision transaction after the approved state is saved.
	OnApprove approval.Hook
	// Notify runs after commit. Failures are logged and never undo the decision.
	Notify func(ctx context.Context, req approval.Request, action approval.Action) error
}

// Workflow applies approve and reject transitions to every approvable request kind.
type Workflow struct {
	tx       approval.Transactor
	handlers map[approval.Kind]Handler
	now      func() time.Time
}

func NewWorkflow(tx approval.Transactor) *Workflow {
	return &Workflow{
		tx:       tx,
		handlers: make(map[approval.Kind]Handler),
		now:      time.Now,
	}
}

func (w *Workflow) Register(kind approval.Kind, h Handler) {
	w.handlers[kind] = h
}

// Approve approves the pending request id of the given kind.
func (w *Workflow) Approve(ctx context.Context, kind approval.Kind, id string) (approval.Request, error) {
	return w.decide(ctx, kind, id, approval.ActionApprove, "")
}

// Reject rejects the pending request id of the given kind with a reason.
func (w *Workflow) Reject(ctx context.Context, kind approval.Kind, id, reason string) (approval.Request, error) {
	return w.decide(ctx, kind, id, approval.ActionReject, reason)
}

func (w *Workflow) decide(ctx context.Context, kind approval.Kind, id string, action approval.Action, reason string) (approval.Request, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return approval.Request{}, err
	}

	h, ok := w.handlers[kind]
	if !ok {
		return approval.Request{}, fmt.Errorf("%w: %s", approval.ErrUnknownKind, kind)
	}

	var req approval.Request
	err = w.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		req, err = h.Store.LockForDecision(ctx, id)
		if err != nil {
			return err
		}

		if !user.CanApproveRequest(actor, req.RequesterBU) {
			return approval.ErrNotAllowedToApprove
		}

		switch action {
		case approval.ActionApprove:
			err = req.State.Approve(actor.ID, w.now())
		case approval.ActionReject:
			err = req.State.Reject(actor.ID, reason)
		}
		if err != nil {
			return err
		}

		if err := h.Store.SaveDecision(ctx, req.ID, req.State); err != nil {
			return err
		}

		if action != approval.ActionApprove {
			return nil
		}
		// A store may serve several kinds; the loaded row decides which hook runs.
		hook := w.handlers[req.Kind].OnApprove
		if hook == nil {
			return nil
		}
		if err := hook(ctx, req); err != nil {
			return fmt.Errorf("failed to apply %s approval: %w", req.Kind, err)
		}
		return nil
	})
	if err != nil {
		return approval.Request{}, err
	}

	slog.InfoContext(ctx, "Request decided",
		"kind", req.Kind, "request_id", req.ID, "action", action, "actor_id", actor.ID)

	if notify := w.handlers[req.Kind].Notify; notify != nil {
		if err := notify(ctx, req, action); err != nil {
			slog.WarnContext(ctx, "Failed to notify requester", "request_id", req.ID, "error", err)
		}
	}

	return req, nil
}
