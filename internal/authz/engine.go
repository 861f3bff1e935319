package authz

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/library-management/internal/core/identity"
)

// Snapshot is the authorization state read for one decision.
type Snapshot struct {
	// Found is false when the identity row has disappeared.
	Found  bool
	Status identity.Status
	// Role is nil when the identity has no role.
	Role     *identity.Role
	HasGrant bool
}

type RepositoryAPI interface {
	// LoadSnapshot reads the identity's current status and role with its
	// permission names. When resource is non-nil the grant lookup for
	// (resource, user) or (resource, user's role) is included.
	LoadSnapshot(ctx context.Context, userID int64, resource *Resource) (*Snapshot, error)
}

// Transactor opens the read snapshot. txn.Manager satisfies it.
type Transactor interface {
	Snapshot(ctx context.Context, fn func(ctx context.Context) error) error
}

type Engine struct {
	repo    RepositoryAPI
	tx      Transactor
	metrics *Metrics
	logger  *slog.Logger
}

// NewEngine builds the engine. metrics may be nil.
func NewEngine(repo RepositoryAPI, tx Transactor, metrics *Metrics, logger *slog.Logger) *Engine {
	return &Engine{
		repo:    repo,
		tx:      tx,
		metrics: metrics,
		logger:  logger,
	}
}

// Authorize decides whether id may exercise permission, optionally on
// resource. The error return is reserved for storage failures; every deny is
// reported through the Decision. Results are never cached.
func (e *Engine) Authorize(ctx context.Context, id *identity.Identity, permission string, resource *Resource) (Decision, error) {
	d, err := e.decide(ctx, id, permission, resource)
	if err != nil {
		e.logger.Error("authorization lookup failed", "permission", permission, "error", err)
		e.metrics.observeError(permission)
		return Decision{}, err
	}
	d.Permission = permission

	if !d.Allowed {
		attrs := []any{"permission", permission, "reason", d.Reason}
		if id != nil {
			attrs = append(attrs, "user_id", id.ID)
		}
		if resource != nil {
			attrs = append(attrs, "resource_type", resource.Type, "resource_id", resource.ID)
		}
		e.logger.Info("access denied", attrs...)
	}
	e.metrics.observe(permission, d)
	return d, nil
}

func (e *Engine) decide(ctx context.Context, id *identity.Identity, permission string, resource *Resource) (Decision, error) {
	if id == nil {
		return deny(DenyUnauthenticated, ReasonNotAuthenticated), nil
	}
	if !id.IsActive() {
		return deny(DenyForbidden, ReasonInactive), nil
	}

	var lookup *Resource
	if resource != nil && resource.Restricted {
		lookup = resource
	}

	var snap *Snapshot
	err := e.tx.Snapshot(ctx, func(ctx context.Context) error {
		var loadErr error
		snap, loadErr = e.repo.LoadSnapshot(ctx, id.ID, lookup)
		return loadErr
	})
	if err != nil {
		return Decision{}, fmt.Errorf("authz: load snapshot: %w", err)
	}

	if !snap.Found {
		return deny(DenyUnauthenticated, ReasonNotAuthenticated), nil
	}
	if snap.Status != identity.StatusActive {
		return deny(DenyForbidden, ReasonInactive), nil
	}
	if snap.Role == nil {
		return deny(DenyForbidden, ReasonNoRole), nil
	}
	if snap.Role.IsAdmin() {
		return allow(id), nil
	}
	if !snap.Role.HasPermission(permission) {
		return deny(DenyForbidden, reasonPermissionRequired(permission)), nil
	}
	if lookup != nil && !snap.HasGrant {
		return deny(DenyForbidden, ReasonNoGrant), nil
	}
	return allow(id), nil
}
