package authkit

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// RevokeUserSessionsMessage asks for every active session of a user to
// be terminated: password change, compromise response, or administrative
// suspension. Dispatchable through a go-command bus; Type is the routing
// key.
type RevokeUserSessionsMessage struct {
	UserID   string `json:"user_id"`
	Reason   string `json:"reason"`
	SourceIP string `json:"source_ip"`
}

func (e RevokeUserSessionsMessage) Type() string { return "auth.revoke_user_sessions" }

// RevokeUserSessionsHandler executes the revoke-all flow
type RevokeUserSessionsHandler struct {
	Lifecycle LifecycleManager
	Logger    Logger
}

func (h *RevokeUserSessionsHandler) Execute(ctx context.Context, event RevokeUserSessionsMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during session revocation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RevokeUserSessionsHandler) execute(ctx context.Context, event RevokeUserSessionsMessage) error {
	logger := h.Logger
	if logger == nil {
		logger = defLogger{}
	}

	id, err := uuid.Parse(event.UserID)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid user id")
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	count, err := h.Lifecycle.RevokeAll(ctx, id, event.SourceIP)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "session revocation failed")
	}

	logger.Info("revoked user sessions",
		"user_id", event.UserID,
		"count", count,
		"reason", event.Reason,
	)

	return nil
}
