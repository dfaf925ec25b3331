package ws

import (
	"encoding/json"
	"sync"

	"quiz-arena/internal/game"
)

// Room fans one game's outbound traffic to its connections. It is the
// game's OutboundChannel: the session loop calls SendAll/SendTo and
// must never block, so full client buffers drop messages instead of
// stalling the game.
type Room struct {
	id string

	mu         sync.Mutex
	byName     map[string]*Client // players and the showman
	spectators map[*Client]bool
}

func NewRoom(id string) *Room {
	return &Room{
		id:         id,
		byName:     map[string]*Client{},
		spectators: map[*Client]bool{},
	}
}

func (r *Room) ID() string { return r.id }

func (r *Room) SendAll(m game.Message) {
	b := encodeEvent(m)
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byName {
		safeSend(c.send, b)
	}
	for c := range r.spectators {
		safeSend(c.send, b)
	}
}

func (r *Room) SendTo(person string, m game.Message) {
	b := encodeEvent(m)
	r.mu.Lock()
	c := r.byName[person]
	r.mu.Unlock()
	if c != nil {
		safeSend(c.send, b)
	}
}

// attach registers a named connection, displacing any previous one for
// the same name. Returns the displaced client, if any.
func (r *Room) attach(c *Client) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	old := r.byName[c.name]
	r.byName[c.name] = c
	if old == c {
		return nil
	}
	return old
}

func (r *Room) attachSpectator(c *Client) {
	r.mu.Lock()
	r.spectators[c] = true
	r.mu.Unlock()
}

// detach removes the connection if it is still the registered one.
func (r *Room) detach(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.spectators[c] {
		delete(r.spectators, c)
		return
	}
	if r.byName[c.name] == c {
		delete(r.byName, c.name)
	}
}

// close drops every connection's send channel.
func (r *Room) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byName {
		safeClose(c.send)
	}
	for c := range r.spectators {
		safeClose(c.send)
	}
	r.byName = map[string]*Client{}
	r.spectators = map[*Client]bool{}
}

func encodeEvent(m game.Message) []byte {
	b, _ := json.Marshal(GameEvent{Type: "game_event", Tag: m.Tag, Args: m.Args})
	return b
}

func safeClose(ch chan []byte) {
	defer func() { _ = recover() }()
	close(ch)
}

func safeSend(ch chan []byte, msg []byte) {
	defer func() { _ = recover() }()
	select {
	case ch <- msg:
	default:
	}
}
