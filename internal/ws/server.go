package ws

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"quiz-arena/internal/config"
	"quiz-arena/internal/content"
	"quiz-arena/internal/game"
	"quiz-arena/internal/ledger"
	"quiz-arena/internal/pack"
	"quiz-arena/internal/store"
)

var (
	ErrGameNotFound  = errors.New("game_not_found")
	ErrBadCredential = errors.New("bad_credential")
)

type Client struct {
	conn      *websocket.Conn
	send      chan []byte
	role      string
	name      string
	playerIdx int
	room      *Room
	host      *game.Host
}

type gameEntry struct {
	room    *Room
	host    *game.Host
	showman string
}

// Server owns the websocket surface and the set of running games.
type Server struct {
	store    *store.Store
	journal  *ledger.Journal
	gameCfg  config.GameConfig
	joinKey  string
	packDir  string
	log      zerolog.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	games map[string]*gameEntry
}

func NewServer(st *store.Store, journal *ledger.Journal, gameCfg config.GameConfig, joinKey, packDir string, log zerolog.Logger) *Server {
	return &Server{
		store:    st,
		journal:  journal,
		gameCfg:  gameCfg,
		joinKey:  joinKey,
		packDir:  packDir,
		log:      log,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		games:    map[string]*gameEntry{},
	}
}

// CreateGame loads a package and spins up a full session: room, host
// loop, content engine. Returns the new game ID.
func (s *Server) CreateGame(ctx context.Context, packFile, showman string, players []string, humans []bool) (string, error) {
	pkg, err := pack.LoadFile(filepath.Join(s.packDir, filepath.Base(packFile)))
	if err != nil {
		return "", err
	}
	id := store.NewID()
	sess := game.NewSession(id, showman, players, humans)
	room := NewRoom(id)
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	host := game.NewHost(sess, room, s.journal, s.gameCfg, rnd, s.log)
	eng := content.NewEngine(pkg, host.Scheduler())
	host.Scheduler().SetNavigator(eng)

	if s.store != nil {
		if err := s.store.CreateGame(ctx, id, pkg.Name); err != nil {
			return "", err
		}
		if err := s.store.AddParticipant(ctx, id, showman, RoleShowman); err != nil {
			return "", err
		}
		for _, name := range players {
			if err := s.store.AddParticipant(ctx, id, name, RolePlayer); err != nil {
				return "", err
			}
		}
	}

	entry := &gameEntry{room: room, host: host, showman: showman}
	s.mu.Lock()
	s.games[id] = entry
	s.mu.Unlock()

	host.SetOnFinished(func() { s.dropGame(id) })
	go host.Run()
	if s.gameCfg.AutomaticStart {
		host.StartGame()
	}
	s.log.Info().Str("game_id", id).Str("pack", pkg.Name).Int("players", len(players)).Msg("game created")
	return id, nil
}

func (s *Server) dropGame(id string) {
	s.mu.Lock()
	entry := s.games[id]
	delete(s.games, id)
	s.mu.Unlock()
	if entry != nil {
		entry.room.close()
	}
}

func (s *Server) Get(id string) (*game.Host, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.games[id]
	if !ok {
		return nil, false
	}
	return e.host, true
}

func (s *Server) List() []game.HostState {
	s.mu.Lock()
	entries := make([]*gameEntry, 0, len(s.games))
	for _, e := range s.games {
		entries = append(entries, e)
	}
	s.mu.Unlock()
	out := make([]game.HostState, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.host.State())
	}
	return out
}

// CancelGame aborts a running game and tears the room down.
func (s *Server) CancelGame(id string) bool {
	s.mu.Lock()
	entry := s.games[id]
	s.mu.Unlock()
	if entry == nil {
		return false
	}
	entry.host.Cancel()
	s.dropGame(id)
	return true
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{conn: conn, send: make(chan []byte, 32), playerIdx: -1}
	go s.writeLoop(client)
	s.readLoop(client)
}

func (s *Server) writeLoop(c *Client) {
	for msg := range c.send {
		_ = c.conn.WriteMessage(websocket.TextMessage, msg)
	}
	_ = c.conn.Close()
}

func (s *Server) readLoop(c *Client) {
	defer func() {
		s.unregister(c)
		_ = c.conn.Close()
	}()
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var base struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &base); err != nil {
			continue
		}
		switch base.Type {
		case "join":
			if c.role != "" {
				continue
			}
			var join JoinMessage
			if err := json.Unmarshal(raw, &join); err != nil {
				continue
			}
			s.handleJoin(c, join)
		case "cmd":
			if c.role == "" || c.host == nil {
				continue
			}
			var cmd CommandMessage
			if err := json.Unmarshal(raw, &cmd); err != nil {
				continue
			}
			s.handleCommand(c, cmd)
		}
	}
}

func (s *Server) handleJoin(c *Client, join JoinMessage) {
	s.mu.Lock()
	entry := s.games[join.GameID]
	s.mu.Unlock()
	if entry == nil {
		s.sendJoinResult(c, false, ErrGameNotFound.Error())
		return
	}

	st := entry.host.State()
	switch join.Role {
	case RoleSpectator:
		c.role = RoleSpectator
		entry.room.attachSpectator(c)
	case RoleShowman:
		if join.Name != entry.showman || (s.joinKey != "" && join.Key != s.joinKey) {
			s.sendJoinResult(c, false, ErrBadCredential.Error())
			return
		}
		c.role = RoleShowman
		c.name = join.Name
		if old := entry.room.attach(c); old != nil {
			safeClose(old.send)
		}
	case RolePlayer:
		idx := -1
		for i, p := range st.Players {
			if p.Name == join.Name {
				idx = i
				break
			}
		}
		if idx < 0 {
			s.sendJoinResult(c, false, ErrBadCredential.Error())
			return
		}
		c.role = RolePlayer
		c.name = join.Name
		c.playerIdx = idx
		if old := entry.room.attach(c); old != nil {
			safeClose(old.send)
		}
		entry.host.SetConnected(join.Name, true)
	default:
		s.sendJoinResult(c, false, "bad_role")
		return
	}
	c.room = entry.room
	c.host = entry.host
	s.sendJoinResult(c, true, "")
	s.sendSnapshot(c, entry.host.State())
	s.log.Info().
		Str("game_id", join.GameID).
		Str("role", c.role).
		Str("name", c.name).
		Msg("ws joined")
}

func (s *Server) unregister(c *Client) {
	if c.room != nil {
		c.room.detach(c)
	}
	if c.role == RolePlayer && c.host != nil {
		c.host.SetConnected(c.name, false)
	}
	safeClose(c.send)
}

func (s *Server) handleCommand(c *Client, cmd CommandMessage) {
	ok := false
	switch cmd.Action {
	// player actions
	case ActPress:
		ok = c.role == RolePlayer && c.host.Press(c.playerIdx)
	case ActChoose:
		ok = c.role == RolePlayer && c.host.Choose(c.playerIdx, cmd.Theme, cmd.Question)
	case ActAnswer:
		ok = c.role == RolePlayer && c.host.Answer(c.playerIdx, cmd.Text)
	case ActStake:
		ok = c.role == RolePlayer && c.host.Stake(c.playerIdx, parseStakeMode(cmd.Mode), cmd.Amount)
	case ActFinalStake:
		ok = c.role == RolePlayer && c.host.FinalStake(c.playerIdx, cmd.Amount)
	case ActGiveCat:
		ok = c.role == RolePlayer && c.host.GiveCat(c.playerIdx, cmd.Target)
	case ActCatCost:
		ok = c.role == RolePlayer && c.host.SetCatCost(c.playerIdx, cmd.Amount)
	case ActDelete:
		ok = c.role == RolePlayer && c.host.DeleteTheme(c.playerIdx, cmd.Theme)
	case ActAppeal:
		ok = c.role == RolePlayer && c.host.Appellate(c.playerIdx, cmd.ForRight)
	case ActVote:
		ok = c.role == RolePlayer && c.host.VoteAppellation(c.playerIdx, cmd.VoteFor)
	case ActReport:
		ok = c.role == RolePlayer && c.host.AckReport(c.playerIdx)

	// showman actions
	case ActValidate:
		ok = c.role == RoleShowman && c.host.Validate(cmd.Verdict)
	case ActPick:
		ok = c.role == RoleShowman && c.host.PickPerson(cmd.Target)
	case ActPause:
		ok = c.role == RoleShowman && c.host.Pause()
	case ActResume:
		ok = c.role == RoleShowman && c.host.Resume()
	case ActNext:
		if c.role == RoleShowman {
			c.host.Next()
			ok = true
		}
	case ActMove:
		ok = c.role == RoleShowman && c.host.Move(game.MoveDirection(cmd.Dir), cmd.Round)
	case ActStart:
		ok = c.role == RoleShowman && c.host.StartGame()
	}
	b, _ := json.Marshal(CommandResult{Type: "cmd_result", Action: cmd.Action, Ok: ok})
	safeSend(c.send, b)
}

func parseStakeMode(mode string) game.StakeMode {
	switch mode {
	case "nominal":
		return game.StakeNominal
	case "sum":
		return game.StakeSum
	case "all_in":
		return game.StakeAllIn
	default:
		return game.StakePass
	}
}

func (s *Server) sendJoinResult(c *Client, ok bool, errCode string) {
	b, _ := json.Marshal(JoinResult{
		Type:            "join_result",
		ProtocolVersion: ProtocolVersion,
		Ok:              ok,
		Error:           errCode,
		PlayerIndex:     c.playerIdx,
		GameID:          roomID(c),
	})
	safeSend(c.send, b)
}

func (s *Server) sendSnapshot(c *Client, st game.HostState) {
	snap := StateSnapshot{
		Type:            "state",
		ProtocolVersion: ProtocolVersion,
		GameID:          st.GameID,
		Started:         st.Started,
		Finished:        st.Finished,
		Paused:          st.Paused,
		Task:            st.Task,
		Decision:        st.Decision,
	}
	for _, p := range st.Players {
		snap.Players = append(snap.Players, PlayerSummary{
			Name: p.Name, Sum: p.Sum, InGame: p.InGame, Connected: p.Connected,
		})
	}
	b, _ := json.Marshal(snap)
	safeSend(c.send, b)
}

func roomID(c *Client) string {
	if c.room == nil {
		return ""
	}
	return c.room.ID()
}
