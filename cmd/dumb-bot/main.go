package main

import (
	"encoding/json"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
)

// Local copies of the wire shapes so the bot stays a plain client.

type Join struct {
	Type   string `json:"type"`
	GameID string `json:"game_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

type JoinResult struct {
	Type        string `json:"type"`
	Ok          bool   `json:"ok"`
	Error       string `json:"error"`
	PlayerIndex int    `json:"player_index"`
}

type Command struct {
	Type     string `json:"type"`
	Action   string `json:"action"`
	Theme    int    `json:"theme,omitempty"`
	Question int    `json:"question,omitempty"`
	Text     string `json:"text,omitempty"`
	Mode     string `json:"mode,omitempty"`
	Amount   int    `json:"amount,omitempty"`
	Target   int    `json:"target,omitempty"`
	VoteFor  bool   `json:"vote_for,omitempty"`
}

type Event struct {
	Type   string   `json:"type"`
	Tag    string   `json:"tag"`
	Args   []string `json:"args"`
	Action string   `json:"action"`
	Ok     bool     `json:"ok"`
}

var answers = []string{"Mozart", "the Nile", "42", "photosynthesis", "Jupiter", "no idea"}

type bot struct {
	conn *websocket.Conn
	rnd  *rand.Rand

	self        int
	themeCount  int
	finalThemes map[int]bool
	chooseTries int
}

func main() {
	wsURL := getenv("WS_URL", "ws://localhost:8080/ws")
	gameID := getenv("GAME_ID", "")
	name := getenv("BOT_NAME", "dumb-bot")
	if gameID == "" {
		log.Fatal("GAME_ID is required")
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	join := Join{Type: "join", GameID: gameID, Name: name, Role: "player"}
	payload, _ := json.Marshal(join)
	_ = conn.WriteMessage(websocket.TextMessage, payload)

	b := &bot{
		conn:        conn,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
		self:        -1,
		finalThemes: map[int]bool{},
	}
	b.run(name)
}

func (b *bot) run(name string) {
	for {
		_, data, err := b.conn.ReadMessage()
		if err != nil {
			return
		}
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		switch ev.Type {
		case "join_result":
			var jr JoinResult
			if err := json.Unmarshal(data, &jr); err != nil {
				continue
			}
			if !jr.Ok {
				log.Fatalf("join rejected: %s", jr.Error)
			}
			b.self = jr.PlayerIndex
			log.Printf("joined as %s (seat %d)", name, b.self)
		case "cmd_result":
			// A rejected choice usually means the cell was played; try another.
			if ev.Action == "choose" && !ev.Ok && b.chooseTries < 20 {
				b.chooseTries++
				b.choose()
			}
		case "game_event":
			b.handle(ev)
		}
	}
}

func (b *bot) handle(ev Event) {
	switch ev.Tag {
	case "ROUNDTHEMES":
		b.themeCount = len(ev.Args)
	case "FINALROUND":
		b.finalThemes = map[int]bool{}
		for i := range ev.Args {
			b.finalThemes[i] = true
		}
	case "OUT":
		if len(ev.Args) == 2 && ev.Args[0] == "theme" {
			if idx, err := strconv.Atoi(ev.Args[1]); err == nil {
				delete(b.finalThemes, idx)
			}
		}
	case "TRY":
		// Press only sometimes, and after a human-ish delay.
		if b.rnd.Intn(2) == 0 {
			time.Sleep(time.Duration(200+b.rnd.Intn(800)) * time.Millisecond)
			b.send(Command{Type: "cmd", Action: "press"})
		}
	case "CHOOSE":
		b.chooseTries = 0
		b.choose()
	case "ANSWER":
		// ANSWER with args is the final-round announce, not a prompt.
		if len(ev.Args) == 0 {
			b.send(Command{Type: "cmd", Action: "answer", Text: answers[b.rnd.Intn(len(answers))]})
		}
	case "STAKE":
		b.stake(ev.Args)
	case "CAT":
		if len(ev.Args) == 0 {
			b.send(Command{Type: "cmd", Action: "give_cat", Target: b.self})
		}
	case "CATCOST":
		if len(ev.Args) == 3 {
			if min, err := strconv.Atoi(ev.Args[0]); err == nil {
				b.send(Command{Type: "cmd", Action: "cat_cost", Amount: min})
			}
		}
	case "DELETE":
		if len(ev.Args) == 0 {
			b.deleteTheme()
		}
	case "APPELLATION":
		b.send(Command{Type: "cmd", Action: "vote", VoteFor: b.rnd.Intn(2) == 0})
	case "REPORT":
		b.send(Command{Type: "cmd", Action: "report"})
	}
}

func (b *bot) choose() {
	themes := b.themeCount
	if themes == 0 {
		themes = 6
	}
	b.send(Command{
		Type:     "cmd",
		Action:   "choose",
		Theme:    b.rnd.Intn(themes),
		Question: b.rnd.Intn(5),
	})
}

// stake reads the availability flags (nominal, sum, pass, all-in, minimum)
// and plays conservatively: pass when allowed, otherwise the minimum.
func (b *bot) stake(args []string) {
	if len(args) != 5 {
		return
	}
	canSum := args[1] == "+"
	canPass := args[2] == "+"
	min, err := strconv.Atoi(args[4])
	if err != nil {
		min = 1
	}
	if canPass && b.rnd.Intn(3) != 0 {
		b.send(Command{Type: "cmd", Action: stakeAction(canPass), Mode: "pass"})
		return
	}
	if canSum {
		b.send(Command{Type: "cmd", Action: stakeAction(canPass), Mode: "sum", Amount: min})
		return
	}
	b.send(Command{Type: "cmd", Action: stakeAction(canPass), Mode: "all_in"})
}

// Auction prompts allow passing, the final-round prompt does not; they
// also use different actions on the wire.
func stakeAction(canPass bool) string {
	if canPass {
		return "stake"
	}
	return "final_stake"
}

func (b *bot) deleteTheme() {
	remaining := make([]int, 0, len(b.finalThemes))
	for idx := range b.finalThemes {
		remaining = append(remaining, idx)
	}
	if len(remaining) == 0 {
		return
	}
	b.send(Command{Type: "cmd", Action: "delete", Theme: remaining[b.rnd.Intn(len(remaining))]})
}

func (b *bot) send(c Command) {
	payload, _ := json.Marshal(c)
	_ = b.conn.WriteMessage(websocket.TextMessage, payload)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
