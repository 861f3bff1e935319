package postgres

import (
	"context"

	"github.com/frahmantamala/library-management/internal/audit"
	auditDatamodel "github.com/frahmantamala/library-management/internal/core/datamodel/audit"
	"github.com/frahmantamala/library-management/internal/core/txn"
	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) audit.RepositoryAPI {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Insert(ctx context.Context, log *auditDatamodel.Log) error {
	return txn.DB(ctx, r.db).Create(log).Error
}

func (r *AuditRepository) List(ctx context.Context, filter audit.Filter) ([]*auditDatamodel.Log, error) {
	q := txn.DB(ctx, r.db).Model(&auditDatamodel.Log{})

	if filter.ActorID != nil {
		q = q.Where("actor_id = ?", *filter.ActorID)
	}
	if filter.Action != "" {
		q = q.Where("action_type = ?", filter.Action)
	}
	if filter.TargetType != "" {
		q = q.Where("target_type = ?", filter.TargetType)
	}
	if filter.TargetID != nil {
		q = q.Where("target_id = ?", *filter.TargetID)
	}

	if filter.Order == audit.OrderAscending {
		q = q.Order("timestamp ASC").Order("id ASC")
	} else {
		q = q.Order("timestamp DESC").Order("id DESC")
	}

	var logs []*auditDatamodel.Log
	err := q.Offset(filter.Offset).Limit(filter.Limit).Find(&logs).Error
	return logs, err
}
