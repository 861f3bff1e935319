// Package action runs state-changing operations under one transaction:
// authorize, mutate, audit, commit.
package action

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/library-management/internal"
	"github.com/frahmantamala/library-management/internal/audit"
	"github.com/frahmantamala/library-management/internal/authz"
	"github.com/frahmantamala/library-management/internal/core/identity"
)

type Authorizer interface {
	Authorize(ctx context.Context, id *identity.Identity, permission string, resource *authz.Resource) (authz.Decision, error)
}

type Auditor interface {
	Record(ctx context.Context, actor *identity.Identity, action, description string, target *audit.Target) (*audit.Record, error)
}

type Transactor interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Step performs the mutation and describes it for the audit trail.
type Step func(ctx context.Context) (audit.Entry, error)

// Locator loads the resource a step is about to touch. It runs inside the
// transaction after the permission check.
type Locator func(ctx context.Context) (*authz.Resource, error)

type Runner struct {
	authz  Authorizer
	audit  Auditor
	tx     Transactor
	logger *slog.Logger
}

func NewRunner(authorizer Authorizer, auditor Auditor, tx Transactor, logger *slog.Logger) *Runner {
	return &Runner{
		authz:  authorizer,
		audit:  auditor,
		tx:     tx,
		logger: logger,
	}
}

// Run authorizes actor for permission on resource, then runs step and records
// its audit entry. A deny, a step error or an audit error rolls back all of it.
func (r *Runner) Run(ctx context.Context, actor *identity.Identity, permission string, resource *authz.Resource, step Step) error {
	return r.tx.Do(ctx, func(ctx context.Context) error {
		if err := r.authorize(ctx, actor, permission, resource); err != nil {
			return err
		}
		return r.apply(ctx, actor, step)
	})
}

// RunOn is Run for steps whose resource must be loaded first. The permission
// is checked before locate runs. A restricted resource is then checked again
// together with its grant.
func (r *Runner) RunOn(ctx context.Context, actor *identity.Identity, permission string, locate Locator, step Step) error {
	return r.tx.Do(ctx, func(ctx context.Context) error {
		if err := r.authorize(ctx, actor, permission, nil); err != nil {
			return err
		}

		resource, err := locate(ctx)
		if err != nil {
			return err
		}
		if resource != nil && resource.Restricted {
			if err := r.authorize(ctx, actor, permission, resource); err != nil {
				return err
			}
		}
		return r.apply(ctx, actor, step)
	})
}

func (r *Runner) authorize(ctx context.Context, actor *identity.Identity, permission string, resource *authz.Resource) error {
	d, err := r.authz.Authorize(ctx, actor, permission, resource)
	if err != nil {
		return internal.NewInternalError("authorization check failed", err)
	}
	return d.Err()
}

func (r *Runner) apply(ctx context.Context, actor *identity.Identity, step Step) error {
	entry, err := step(ctx)
	if err != nil {
		return err
	}

	if _, err := r.audit.Record(ctx, actor, entry.Action, entry.Description, entry.Target); err != nil {
		r.logger.Error("audit write failed, rolling back action", "action", entry.Action, "error", err)
		return internal.NewInternalError("failed to record audit entry", fmt.Errorf("action: %w", err))
	}
	return nil
}
