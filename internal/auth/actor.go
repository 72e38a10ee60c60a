package auth

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type ActorType string

const (
	ActorTypeAdmin ActorType = "ADMIN"
	ActorTypeUser  ActorType = "USER"
)

const (
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPER_ADMIN"

	// StaffRole is the fixed role tag reported for staff users, which carry
	// no admin role of their own.
	StaffRole = "USER"
)

// Actor is the authenticated identity driving a session: either an admin
// (role-bearing) or a staff user. Type discriminates the union; admin-only
// and user-only fields are empty on the other variant.
type Actor struct {
	Type  ActorType `json:"type"`
	ID    int64     `json:"id"`
	Email string    `json:"email"`

	// admin variant
	AdminRole string `json:"role,omitempty"`

	// user variant
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	Department string `json:"department,omitempty"`
}

func (a Actor) IsAdmin() bool {
	return a.Type == ActorTypeAdmin
}

func (a Actor) IsSuperAdmin() bool {
	return a.Type == ActorTypeAdmin && a.AdminRole == RoleSuperAdmin
}

func (a Actor) IsUser() bool {
	return a.Type == ActorTypeUser
}

// Role returns the admin's role string, or the fixed staff tag for users.
func (a Actor) Role() string {
	switch a.Type {
	case ActorTypeAdmin:
		return a.AdminRole
	case ActorTypeUser:
		return StaffRole
	}
	return ""
}

// DisplayName returns a human-readable label for audit descriptions.
func (a Actor) DisplayName() string {
	switch a.Type {
	case ActorTypeAdmin:
		return a.Email
	case ActorTypeUser:
		return fmt.Sprintf("%s %s", a.FirstName, a.LastName)
	}
	return a.Email
}

func (a Actor) Validate() error {
	switch a.Type {
	case ActorTypeAdmin:
		if a.AdminRole != RoleAdmin && a.AdminRole != RoleSuperAdmin {
			return fmt.Errorf("invalid admin role %q", a.AdminRole)
		}
	case ActorTypeUser:
		if a.AdminRole != "" {
			return errors.New("staff user cannot carry an admin role")
		}
	default:
		return fmt.Errorf("unknown actor type %q", a.Type)
	}
	if a.ID == 0 {
		return errors.New("actor id is required")
	}
	return nil
}

// Session pairs the bearer token with the actor it authenticates. The two
// are persisted as one record so they can never be set or cleared
// independently.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	Actor     Actor     `json:"actor"`
	ExpiresAt time.Time `json:"expiresAt"`
}

var ErrSessionNotFound = errors.New("session not found")

// SessionStore is the durable store for active sessions. A missing record
// means the token is revoked regardless of its signature.
type SessionStore interface {
	Save(ctx context.Context, s *Session) error
	Load(ctx context.Context, id string) (*Session, error)
	Clear(ctx context.Context, id string) error
}

type actorCtxKey string

const ContextActorKey actorCtxKey = "actor"

func ActorFromContext(ctx context.Context) (*Actor, bool) {
	if ctx == nil {
		return nil, false
	}
	actor, ok := ctx.Value(ContextActorKey).(*Actor)
	return actor, ok
}

func ContextWithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, ContextActorKey, actor)
}

type sessionCtxKey string

const ContextSessionKey sessionCtxKey = "sessionID"

func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(ContextSessionKey).(string); ok {
		return id
	}
	return ""
}

func ContextWithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextSessionKey, id)
}
