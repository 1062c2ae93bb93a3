package internal

import (
	"errors"
	"sync"
	"time"
)

var ErrNoNotifier = errors.New("player has no notifier")

// Notifier is the server-push side of a player's connection. A websocket
// connection satisfies it directly.
type Notifier interface {
	WriteJSON(v any) error
}

// PlayerDTO is a roster entry as seen by clients.
type PlayerDTO struct {
	Id       string `json:"id"`
	Nickname string `json:"nickname"`
	Photo    string `json:"photo"`
	Team     Team   `json:"team"`
	Role     Role   `json:"role"`
}

type Player struct {
	PlayerDTO
	Notifier Notifier `json:"-"`
	JoinedAt time.Time

	Mu sync.Mutex `json:"-"`
}

// FlipRole returns the role a player takes in the next round.
func FlipRole(prev Role) Role {
	if prev == RoleClueGiver {
		return RoleGuesser
	}
	return RoleClueGiver
}

// RotateRoles flips the role of every player. Teams never change.
func RotateRoles(players map[string]*Player) {
	for _, p := range players {
		p.Role = FlipRole(p.Role)
	}
}

func (p *Player) ToPublicPlayer() PlayerDTO {
	return p.PlayerDTO
}

// SafeWriteJSON serialises writes to the player's notifier.
func (p *Player) SafeWriteJSON(v any) error {
	p.Mu.Lock()
	defer p.Mu.Unlock()
	if p.Notifier == nil {
		return ErrNoNotifier
	}
	return p.Notifier.WriteJSON(v)
}
