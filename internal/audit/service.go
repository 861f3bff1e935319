package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	auditDatamodel "github.com/frahmantamala/library-management/internal/core/datamodel/audit"
	"github.com/frahmantamala/library-management/internal/core/identity"
	"github.com/frahmantamala/library-management/internal/core/txn"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

type RepositoryAPI interface {
	Insert(ctx context.Context, log *auditDatamodel.Log) error
	List(ctx context.Context, filter Filter) ([]*auditDatamodel.Log, error)
}

// Service writes and reads the audit trail.
type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the timestamp source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Record builds an audit record and persists it through the transaction in
// ctx, if any. The record is returned even when persisting fails.
func (s *Service) Record(ctx context.Context, actor *identity.Identity, action, description string, target *Target) (*Record, error) {
	rec := s.build(actor, action, description, target)

	row := ToDataModel(rec)
	if err := s.repo.Insert(ctx, row); err != nil {
		return rec, fmt.Errorf("audit: record %s: %w", action, err)
	}
	rec.ID = row.ID
	return rec, nil
}

// RecordDetached writes outside any surrounding transaction. Failures are
// reported on the process log rather than returned.
func (s *Service) RecordDetached(ctx context.Context, actor *identity.Identity, action, description string, target *Target) *Record {
	rec, err := s.Record(txn.Detach(ctx), actor, action, description, target)
	if err != nil {
		var actorID int64
		if rec.ActorID != nil {
			actorID = *rec.ActorID
		}
		s.logger.Error("failed to persist audit record",
			"action", action,
			"actor_id", actorID,
			"error", err)
	}
	return rec
}

func (s *Service) List(ctx context.Context, filter Filter) ([]*Record, error) {
	if filter.Order == "" {
		filter.Order = OrderDescending
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}
	if filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list audit records", "error", err)
		return nil, err
	}

	records := make([]*Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, FromDataModel(row))
	}
	return records, nil
}

func (s *Service) build(actor *identity.Identity, action, description string, target *Target) *Record {
	rec := &Record{
		Timestamp: s.now().UTC(),
		Action:    action,
	}
	if actor != nil {
		id := actor.ID
		rec.ActorID = &id
	}
	if description != "" {
		rec.Description = &description
	}
	if target != nil {
		targetType, targetID := target.Type, target.ID
		rec.TargetType = &targetType
		rec.TargetID = &targetID
	}
	return rec
}
