package models

import (
	"time"

	"gorm.io/datatypes"
)

// Profile kinds stored in the local state database.
const (
	ProfileKindCandidate = "candidate"
	ProfileKindHR        = "hr"
)

// Profile caches the signed-in user or HR record alongside the session token
// the gateway issued for it. It replaces the ad-hoc client-side auth flag with
// a typed, verifiable session context.
type Profile struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	Kind      string            `gorm:"size:16;not null;index" json:"kind"`
	RemoteID  string            `gorm:"size:64;not null;uniqueIndex" json:"remote_id"`
	Email     string            `gorm:"size:256" json:"email"`
	Name      string            `gorm:"size:256" json:"name"`
	Token     string            `gorm:"size:1024" json:"-"`
	Raw       datatypes.JSONMap `json:"raw,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
