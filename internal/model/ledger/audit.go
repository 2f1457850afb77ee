package ledgermodel

import "time"

// AuditLog records one state transition with the event that triggered it.
// Rows go to monthly sharded tables, see internal/shard.
type AuditLog struct {
	AuditID    uint64    `gorm:"column:audit_id;primaryKey;not null" json:"auditId"`
	EntityType string    `gorm:"column:entity_type;type:varchar(16);not null" json:"entityType"`
	EntityID   uint64    `gorm:"column:entity_id;not null" json:"entityId"`
	EventID    string    `gorm:"column:event_id;type:varchar(64)" json:"eventId"` // processor event id, empty for local actions
	FromStatus string    `gorm:"column:from_status;type:varchar(24)" json:"fromStatus"`
	ToStatus   string    `gorm:"column:to_status;type:varchar(24)" json:"toStatus"`
	Note       string    `gorm:"column:note;type:varchar(255)" json:"note"`
	TraceID    string    `gorm:"column:trace_id;type:varchar(64)" json:"traceId"`
	CreateTime time.Time `gorm:"column:create_time;not null" json:"createTime"`
}
