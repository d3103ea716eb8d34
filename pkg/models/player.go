package models

import "time"

// AnonymousID owns the builds of unauthenticated connections.
const AnonymousID = "anonymous"

// Player is the owner of a planner connection and of the builds it saves.
type Player struct {
	// From JWT claims
	ID          string `json:"id"`          // Converted from int64 user_id
	Username    string `json:"username"`    // JWT claim
	Email       string `json:"email"`       // JWT claim
	Permissions int64  `json:"permissions"` // JWT claim: bitwise permission flags
	Activated   int64  `json:"activated"`   // JWT claim: activation timestamp or ban status

	ConnectedAt time.Time `json:"connected_at"`
}

// Anonymous returns the owner used when authentication is disabled.
func Anonymous() *Player {
	return &Player{ID: AnonymousID, Username: AnonymousID, Activated: 1, ConnectedAt: time.Now()}
}

// IsActive checks if the player account is activated and not banned
func (p *Player) IsActive() bool {
	// activated > 0 means activated
	// activated == 0 means not activated
	// activated == -1 means banned
	return p.Activated > 0
}

// IsBanned checks if the player is banned
func (p *Player) IsBanned() bool {
	return p.Activated == -1
}
