package audit

import (
	"encoding/json"
	"time"

	"github.com/salesopshq/salesops/internal/auth"
)

// AuditLog is a persisted record of who did what. The actor is snapshotted
// as JSON at write time so the trail survives later renames and deletions.
type AuditLog struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	ActorType   string    `json:"actorType" gorm:"column:actor_type;not null"`
	ActorID     int64     `json:"actorId" gorm:"column:actor_id;not null"`
	ActorJSON   string    `json:"-" gorm:"column:actor_json"`
	Action      string    `json:"action" gorm:"not null"`
	Entity      string    `json:"entity"`
	EntityID    *int64    `json:"entityId,omitempty" gorm:"column:entity_id"`
	Description string    `json:"description"`
	MetaJSON    string    `json:"-" gorm:"column:meta_json"`
	IPAddress   *string   `json:"ipAddress,omitempty" gorm:"column:ip_address"`
	UserAgent   *string   `json:"userAgent,omitempty" gorm:"column:user_agent"`
	CreatedAt   time.Time `json:"createdAt" gorm:"column:created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// View is the API shape: the snapshot columns decoded back into objects.
type View struct {
	ID          int64                  `json:"id"`
	ActorType   string                 `json:"actorType"`
	ActorID     int64                  `json:"actorId"`
	Actor       *auth.Actor            `json:"actor,omitempty"`
	Action      string                 `json:"action"`
	Entity      string                 `json:"entity,omitempty"`
	EntityID    *int64                 `json:"entityId,omitempty"`
	Description string                 `json:"description"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	IPAddress   *string                `json:"ipAddress,omitempty"`
	UserAgent   *string                `json:"userAgent,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
}

func (l *AuditLog) ToView() View {
	view := View{
		ID:          l.ID,
		ActorType:   l.ActorType,
		ActorID:     l.ActorID,
		Action:      l.Action,
		Entity:      l.Entity,
		EntityID:    l.EntityID,
		Description: l.Description,
		IPAddress:   l.IPAddress,
		UserAgent:   l.UserAgent,
		CreatedAt:   l.CreatedAt,
	}

	// Old rows may predate the snapshot columns; a decode failure just
	// leaves the field empty.
	if l.ActorJSON != "" {
		var actor auth.Actor
		if err := json.Unmarshal([]byte(l.ActorJSON), &actor); err == nil {
			view.Actor = &actor
		}
	}
	if l.MetaJSON != "" {
		var meta map[string]interface{}
		if err := json.Unmarshal([]byte(l.MetaJSON), &meta); err == nil {
			view.Metadata = meta
		}
	}

	return view
}

func ToViewSlice(logs []*AuditLog) []View {
	views := make([]View, len(logs))
	for i, l := range logs {
		views[i] = l.ToView()
	}
	return views
}

// ListFilter narrows the audit listing.
type ListFilter struct {
	ActorType string
	Action    string
	Entity    string
}
