package game

import (
	"time"

	"quiz-arena/internal/pack"
)

// Decision tags the kind of external input the session is waiting for.
type Decision int

const (
	DecisionNone Decision = iota
	DecisionStarterChoosing
	DecisionQuestionChoosing
	DecisionPressing
	DecisionAnswering
	DecisionAnswerValidating
	DecisionCatGiving
	DecisionCatCostSetting
	DecisionNextPersonStakeMaking
	DecisionAuctionStakeMaking
	DecisionNextPersonFinalThemeDeleting
	DecisionFinalThemeDeleting
	DecisionFinalStakeMaking
	DecisionAppellationDecision
	DecisionReporting
)

var decisionNames = map[Decision]string{
	DecisionNone:                         "None",
	DecisionStarterChoosing:              "StarterChoosing",
	DecisionQuestionChoosing:             "QuestionChoosing",
	DecisionPressing:                     "Pressing",
	DecisionAnswering:                    "Answering",
	DecisionAnswerValidating:             "AnswerValidating",
	DecisionCatGiving:                    "CatGiving",
	DecisionCatCostSetting:               "CatCostSetting",
	DecisionNextPersonStakeMaking:        "NextPersonStakeMaking",
	DecisionAuctionStakeMaking:           "AuctionStakeMaking",
	DecisionNextPersonFinalThemeDeleting: "NextPersonFinalThemeDeleting",
	DecisionFinalThemeDeleting:           "FinalThemeDeleting",
	DecisionFinalStakeMaking:             "FinalStakeMaking",
	DecisionAppellationDecision:          "AppellationDecision",
	DecisionReporting:                    "Reporting",
}

func (d Decision) String() string {
	if n, ok := decisionNames[d]; ok {
		return n
	}
	return "Unknown"
}

// StopReason intercepts the next scheduled task. Larger values never
// overwrite smaller ones: Pause outranks everything, Wait nothing.
type StopReason int

const (
	StopNone StopReason = iota
	StopPause
	StopDecision
	StopAnswer
	StopAppellation
	StopMove
	StopWait
)

var stopNames = map[StopReason]string{
	StopNone:        "None",
	StopPause:       "Pause",
	StopDecision:    "Decision",
	StopAnswer:      "Answer",
	StopAppellation: "Appellation",
	StopMove:        "Move",
	StopWait:        "Wait",
}

func (r StopReason) String() string {
	if n, ok := stopNames[r]; ok {
		return n
	}
	return "Unknown"
}

// Move directions carried by StopMove.
type MoveDirection int

const (
	MoveBack          MoveDirection = -1
	MovePreviousRound MoveDirection = -2
	MoveNext          MoveDirection = 1
	MoveNextRound     MoveDirection = 2
	MoveToRound       MoveDirection = 3
)

type Player struct {
	Name        string
	Sum         int
	CanPress    bool
	InGame      bool
	IsHuman     bool
	StakeMaking bool
	PingPenalty bool
	Connected   bool

	// per-question scratch
	Answer     string
	FinalStake int
	Answered   bool
	Staked     bool
	Reported   bool
}

// AnswerRecord is one entry of the current question's history, kept so
// appellation can reverse exactly what was applied.
type AnswerRecord struct {
	PlayerIndex int
	IsRight     bool
	Delta       int
	Price       int // question value at the time, kept for reversal
}

// StakeMode is a bid kind in the auction sub-phase.
type StakeMode int

const (
	StakeNominal StakeMode = iota
	StakeSum
	StakePass
	StakeAllIn
)

var stakeModeNames = map[StakeMode]string{
	StakeNominal: "Nominal",
	StakeSum:     "Sum",
	StakePass:    "Pass",
	StakeAllIn:   "AllIn",
}

func (m StakeMode) String() string {
	if n, ok := stakeModeNames[m]; ok {
		return n
	}
	return "Unknown"
}

// AnswerMode says how the current question gets answered.
type AnswerMode int

const (
	AnswerByPress AnswerMode = iota // open press window
	AnswerFixed                     // a single pre-determined answerer
	AnswerByAll                     // final round: every in-game player writes
)

// Session is the root aggregate of one running game. It is owned by a
// single Host goroutine; nothing outside that loop may touch it.
type Session struct {
	ID      string
	Players []*Player
	Showman string

	Round    *pack.Round
	Theme    *pack.Theme
	Question *pack.Question

	Current    Task
	stack      []SavedTask
	Decision   Decision
	StopReason StopReason

	// actor slots
	ChooserIndex   int
	AnswererIndex  int
	StakerIndex    int
	AppellantIndex int
	StarterPick    int // reported starter index, -1 until it lands
	PresserIndex   int // reported press, -1 until it lands

	// question scratch
	CurPrice   int
	AnswerMode AnswerMode
	NoRisk     bool // sponsored question: wrong answers cost nothing
	History    []AnswerRecord

	// board choice scratch
	ChoiceTheme    int
	ChoiceQuestion int

	// auction scratch
	Order         []int // bidding turn order, one slot per player
	LastBidder    int   // player last prompted for a bid, -1 before any
	Stake         int
	StakerMode    StakeMode
	StakerSum     int
	StakeReported bool
	NextStakerSet []int // tie candidates awaiting showman pick
	StakerPick    int   // showman's reported pick, -1 until it lands

	// secret question scratch
	CatReceiver int
	CatCost     int

	// final round scratch
	Deleters      *ThemeDeleters
	FinalThemes   []int // remaining theme indices
	DeleteChoice  int
	DeleterPick   int   // showman's tie-break pick, -1 until it lands
	DeleterIndex  int   // player currently asked to delete
	DeleterSet    []int // tie candidates awaiting showman pick
	AnnounceOrder []int
	Validated     *bool // pending validation verdict

	// appellation scratch
	AppealRecord    int  // index into History being contested
	AppealForRight  bool // true: "my wrong answer was right"
	AppealVotesFor  int
	AppealVotesAgst int
	AppealVoted     []bool

	// movement scratch
	MoveDir   MoveDirection
	MoveRound int
	WaitDelay time.Duration

	// flags
	Started       bool
	Finished      bool
	MoveBlocked   bool // fatal task error: operator must navigate out
	AnythingShown bool // paging loops: at least one optional field shown
}

// NewSession builds a session with the reported-input slots cleared.
func NewSession(id string, showman string, names []string, humans []bool) *Session {
	players := make([]*Player, len(names))
	for i, n := range names {
		isHuman := i < len(humans) && humans[i]
		players[i] = &Player{Name: n, InGame: true, IsHuman: isHuman, Connected: true}
	}
	return &Session{
		ID:           id,
		Players:      players,
		Showman:      showman,
		ChooserIndex: -1, AnswererIndex: -1, StakerIndex: -1,
		AppellantIndex: -1, StarterPick: -1, PresserIndex: -1,
		CatReceiver: -1, ChoiceTheme: -1, ChoiceQuestion: -1,
		DeleteChoice: -1, AppealRecord: -1,
		StakerPick: -1, DeleterPick: -1, DeleterIndex: -1,
		LastBidder: -1,
	}
}

func (s *Session) PlayerIndex(name string) int {
	for i, p := range s.Players {
		if p.Name == name {
			return i
		}
	}
	return -1
}

func (s *Session) ValidPlayer(idx int) bool {
	return idx >= 0 && idx < len(s.Players)
}

// InGameCount counts players still eligible for the final round.
func (s *Session) InGameCount() int {
	n := 0
	for _, p := range s.Players {
		if p.InGame {
			n++
		}
	}
	return n
}

// SetStopReason applies the fixed priority: an already-set stronger
// reason wins over a weaker late arrival.
func (s *Session) SetStopReason(r StopReason) bool {
	if s.StopReason != StopNone && s.StopReason <= r {
		return false
	}
	s.StopReason = r
	return true
}

func (s *Session) PushTask(t SavedTask) { s.stack = append(s.stack, t) }

func (s *Session) PopTask() (SavedTask, bool) {
	if len(s.stack) == 0 {
		return SavedTask{}, false
	}
	t := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	return t, true
}

func (s *Session) StackDepth() int { return len(s.stack) }

// CheckOrder verifies the auction turn order holds each player at most
// once and only valid indices.
func (s *Session) CheckOrder() error {
	seen := make(map[int]bool, len(s.Order))
	for _, idx := range s.Order {
		if idx < 0 || idx >= len(s.Players) || seen[idx] {
			return ErrDuplicateOrder
		}
		seen[idx] = true
	}
	return nil
}

// ClearQuestionScratch resets everything tied to a single question.
func (s *Session) ClearQuestionScratch() {
	s.History = nil
	s.AnswererIndex = -1
	s.PresserIndex = -1
	s.CatReceiver = -1
	s.CatCost = 0
	s.Stake = 0
	s.StakerIndex = -1
	s.StakeReported = false
	s.NextStakerSet = nil
	s.StakerPick = -1
	s.Order = nil
	s.LastBidder = -1
	s.Validated = nil
	s.NoRisk = false
	s.AnswerMode = AnswerByPress
	for _, p := range s.Players {
		p.Answer = ""
		p.Answered = false
		p.CanPress = false
	}
}
