package account

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// Suspend blocks an active account
func (l *AccountLifecycle) Suspend(ctx context.Context, actor ActorRef, email, reason string) (*Account, error) {
	return l.transition(ctx, actor, email, AccountStatusSuspended, reason)
}

// Reinstate returns a suspended account to active
func (l *AccountLifecycle) Reinstate(ctx context.Context, actor ActorRef, email, reason string) (*Account, error) {
	return l.transition(ctx, actor, email, AccountStatusActive, reason)
}

// Withdraw closes an account, it can not be reopened
func (l *AccountLifecycle) Withdraw(ctx context.Context, actor ActorRef, email, reason string) (*Account, error) {
	return l.transition(ctx, actor, email, AccountStatusWithdrawn, reason)
}

func (l *AccountLifecycle) transition(ctx context.Context, actor ActorRef, email string, target AccountStatus, reason string) (*Account, error) {
	if err := guard(ctx, "account status transition"); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	acc, err := l.repo.Accounts().FindByEmail(ctx, email)
	if err != nil {
		if IsRecordNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for status change")
	}

	opts := []TransitionOption{}
	if reason != "" {
		opts = append(opts, WithTransitionReason(reason))
	}

	updated, err := l.states.Transition(ctx, actor, acc, target, opts...)
	if err != nil {
		return nil, resultError(err, "failed to change account status")
	}

	l.logger.Info("account %s moved to %s", updated.ID, updated.Status)
	return updated, nil
}
