package game

// Publisher is the outbound event bus surface the game layer depends on.
// Implemented by the messaging package; publish failures are the publisher's
// problem and never affect game state.
type Publisher interface {
	PublishEvent(kind string, payload any)
}

// NopPublisher discards events. Used in tests and when the bus is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishEvent(string, any) {}

// Event kinds published on the world event subject.
const (
	EventLogin    = "login"
	EventLogout   = "logout"
	EventChat     = "chat"
	EventNpcDeath = "npc-death"
)

type LoginEvent struct {
	PlayerId string `json:"player_id"`
	Username string `json:"username"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
}

type LogoutEvent struct {
	PlayerId string `json:"player_id"`
	Username string `json:"username,omitempty"`
}

type ChatEvent struct {
	PlayerId string `json:"player_id"`
	Username string `json:"username"`
	Text     string `json:"text"`
}

type NpcDeathEvent struct {
	NpcId    string `json:"npc_id"`
	Kind     string `json:"kind"`
	KilledBy string `json:"killed_by"`
	Drops    int    `json:"drops"`
}
