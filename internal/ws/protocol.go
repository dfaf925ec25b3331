package ws

// ProtocolVersion is bumped on any wire-visible change.
const ProtocolVersion = "1.0"

// Roles a connection can hold after the join handshake.
const (
	RolePlayer    = "player"
	RoleShowman   = "showman"
	RoleSpectator = "spectator"
)

type JoinMessage struct {
	Type   string `json:"type"`
	GameID string `json:"game_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Key    string `json:"key,omitempty"`
}

type JoinResult struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Ok              bool   `json:"ok"`
	Error           string `json:"error,omitempty"`
	GameID          string `json:"game_id,omitempty"`
	PlayerIndex     int    `json:"player_index"`
}

// CommandMessage is every in-game input. Which fields matter depends on
// the action.
type CommandMessage struct {
	Type     string `json:"type"`
	Action   string `json:"action"`
	Theme    int    `json:"theme,omitempty"`
	Question int    `json:"question,omitempty"`
	Text     string `json:"text,omitempty"`
	Verdict  bool   `json:"verdict,omitempty"`
	Mode     string `json:"mode,omitempty"`
	Amount   int    `json:"amount,omitempty"`
	Target   int    `json:"target,omitempty"`
	ForRight bool   `json:"for_right,omitempty"`
	VoteFor  bool   `json:"vote_for,omitempty"`
	Dir      int    `json:"dir,omitempty"`
	Round    int    `json:"round,omitempty"`
}

type CommandResult struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Ok     bool   `json:"ok"`
}

// GameEvent mirrors one outbound protocol line.
type GameEvent struct {
	Type string   `json:"type"`
	Tag  string   `json:"tag"`
	Args []string `json:"args,omitempty"`
}

// StateSnapshot is sent right after a successful join so late joiners
// and reconnects can render the table.
type StateSnapshot struct {
	Type            string          `json:"type"`
	ProtocolVersion string          `json:"protocol_version"`
	GameID          string          `json:"game_id"`
	Started         bool            `json:"started"`
	Finished        bool            `json:"finished"`
	Paused          bool            `json:"paused"`
	Task            string          `json:"task"`
	Decision        string          `json:"decision"`
	Players         []PlayerSummary `json:"players"`
}

type PlayerSummary struct {
	Name      string `json:"name"`
	Sum       int    `json:"sum"`
	InGame    bool   `json:"in_game"`
	Connected bool   `json:"connected"`
}

// Client actions.
const (
	ActPress      = "press"
	ActChoose     = "choose"
	ActAnswer     = "answer"
	ActValidate   = "validate"
	ActPick       = "pick"
	ActStake      = "stake"
	ActFinalStake = "final_stake"
	ActGiveCat    = "give_cat"
	ActCatCost    = "cat_cost"
	ActDelete     = "delete"
	ActAppeal     = "appeal"
	ActVote       = "vote"
	ActReport     = "report"
	ActPause      = "pause"
	ActResume     = "resume"
	ActNext       = "next"
	ActMove       = "move"
	ActStart      = "start"
)
