// Package account manages the lifecycle of password based accounts:
// registration, email verification, the authentication gate and password
// reset.
//
// Account lifecycle:
//   - New accounts start pending and carry a single use verification token.
//     Consuming the token marks the email verified and moves the account to
//     active. Only active, verified accounts pass CheckAuthenticatable.
//   - AccountStateMachine owns the operator transitions (suspend, reinstate,
//     withdraw). Withdrawn is terminal.
//
// Results:
//   - Operations that report a boolean return false with a nil error for an
//     ordinary failure (rejected registration input, duplicate email, used
//     token, delivery failure). A go-errors error signals either a condition
//     the caller must react to (ErrAccountNotFound, ErrInvalidResetWindow,
//     gate errors) or an infrastructure fault.
//   - Writes and the matching notification share one transaction. When the
//     notifier reports a failure nothing is persisted.
//
// Activity sinks:
//   - ActivitySink receives an ActivityEvent for every lifecycle step. Sinks
//     run best effort, errors are logged and never fail the operation.
package account
