package audit

import "time"

type Log struct {
	ID          int64     `gorm:"primaryKey"`
	Timestamp   time.Time `gorm:"column:timestamp;not null;index"`
	ActorID     *int64    `gorm:"column:actor_id;index"`
	ActionType  string    `gorm:"column:action_type;not null;index"`
	TargetType  *string   `gorm:"column:target_type"`
	TargetID    *int64    `gorm:"column:target_id"`
	Description *string   `gorm:"column:description"`
}

func (Log) TableName() string {
	return "audit_logs"
}
