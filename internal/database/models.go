package database

import "time"

// Setting is a key/value row used as an advisory cache. Values here (the
// cached authenticated flag in particular) may be stale; the live provider
// check is always authoritative.
type Setting struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `gorm:"not null" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Advisory cache keys.
const (
	SettingAuthenticated = "authenticated"
	SettingLastAuthCheck = "last_auth_check"
)

// ActionLog records one operator-initiated operation and its outcome.
type ActionLog struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FlowID     string    `gorm:"size:36;index" json:"flow_id"`
	Action     string    `gorm:"not null" json:"action"` // create, delete, route, login
	TunnelName string    `json:"tunnel_name"`
	Hostname   string    `json:"hostname"`
	Success    bool      `json:"success"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
