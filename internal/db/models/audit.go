package models

import "time"

// AuditOutcome is the result of an audited action.
type AuditOutcome string

const (
	// AuditSuccess marks a completed mutation.
	AuditSuccess AuditOutcome = "success"
	// AuditDenied marks a capability denial.
	AuditDenied AuditOutcome = "denied"
	// AuditIsolation marks a cross-tenant access attempt.
	AuditIsolation AuditOutcome = "isolation"
)

// AuditLog records authorization decisions and administrative mutations.
type AuditLog struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// ActorID is the user who performed the action.
	ActorID uint `gorm:"index" json:"actor_id"`
	// TenantID is the actor's tenant at the time of the action.
	TenantID *uint `gorm:"index" json:"tenant_id"`
	// Action is a dotted event name (e.g., "role.sync_permissions").
	Action string `gorm:"size:100;not null" json:"action"`
	// TargetType is the kind of entity acted upon (e.g., "role", "user").
	TargetType string `gorm:"size:50" json:"target_type"`
	// TargetID is the primary key of the entity acted upon.
	TargetID uint `json:"target_id"`
	// Outcome is success, denied or isolation.
	Outcome AuditOutcome `gorm:"type:varchar(20);not null;index" json:"outcome"`
	// Reason holds the error text for denials.
	Reason string `gorm:"size:255" json:"reason,omitempty"`
	// CreatedAt is the timestamp of the event (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the database table name for the AuditLog model.
func (AuditLog) TableName() string {
	return "audit_logs"
}

// All returns every model managed by the schema migration, in dependency order.
func All() []any {
	return []any{
		&Tenant{},
		&Permission{},
		&Role{},
		&User{},
		&PermissionRole{},
		&PermissionUser{},
		&RoleUser{},
		&AuditLog{},
		&Session{},
	}
}
