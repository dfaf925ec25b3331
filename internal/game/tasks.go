package game

// TaskKind names one step of the session state machine. A Task is a kind
// plus a step counter; the counter is only ever a sub-step index for
// multi-page announcements, never an actor index (actors live in named
// Session fields).
type TaskKind int

const (
	TaskNone TaskKind = iota
	TaskStartGame
	TaskPackage
	TaskRoundHeader
	TaskRoundThemes
	TaskMoveNext
	TaskAskFirst
	TaskWaitFirst
	TaskAskToChoose
	TaskWaitChoose
	TaskTheme
	TaskQuestionType
	TaskPrintQuestion
	TaskPrintStakeQuestion
	TaskPrintSecretQuestion
	TaskPrintSponsored
	TaskAskCat
	TaskWaitCat
	TaskCatInfo
	TaskAskCatCost
	TaskWaitCatCost
	TaskAskStake
	TaskWaitStake
	TaskWaitNextPersonStake
	TaskPrintAuctPlayer
	TaskAskToTry
	TaskWaitTry
	TaskAskAnswer
	TaskWaitAnswer
	TaskAskRight
	TaskWaitRight
	TaskContinueQuestion
	TaskQuestionPostInfo
	TaskPrintFinal
	TaskAskToDelete
	TaskWaitDelete
	TaskWaitNextPersonDelete
	TaskAskFinalStake
	TaskWaitFinalStake
	TaskAnnounce
	TaskAnnounceStake
	TaskEndRound
	TaskEndGame
	TaskGoodLuck
	TaskWaitReport
	TaskPrintAppellation
	TaskWaitAppellationDecision
	TaskCheckAppellation
)

type Task struct {
	Kind TaskKind
	Step int
}

var taskNames = map[TaskKind]string{
	TaskNone:                    "None",
	TaskStartGame:               "StartGame",
	TaskPackage:                 "Package",
	TaskRoundHeader:             "RoundHeader",
	TaskRoundThemes:             "RoundThemes",
	TaskMoveNext:                "MoveNext",
	TaskAskFirst:                "AskFirst",
	TaskWaitFirst:               "WaitFirst",
	TaskAskToChoose:             "AskToChoose",
	TaskWaitChoose:              "WaitChoose",
	TaskTheme:                   "Theme",
	TaskQuestionType:            "QuestionType",
	TaskPrintQuestion:           "PrintQuestion",
	TaskPrintStakeQuestion:      "PrintStakeQuestion",
	TaskPrintSecretQuestion:     "PrintSecretQuestion",
	TaskPrintSponsored:          "PrintSponsored",
	TaskAskCat:                  "AskCat",
	TaskWaitCat:                 "WaitCat",
	TaskCatInfo:                 "CatInfo",
	TaskAskCatCost:              "AskCatCost",
	TaskWaitCatCost:             "WaitCatCost",
	TaskAskStake:                "AskStake",
	TaskWaitStake:               "WaitStake",
	TaskWaitNextPersonStake:     "WaitNextPersonStake",
	TaskPrintAuctPlayer:         "PrintAuctPlayer",
	TaskAskToTry:                "AskToTry",
	TaskWaitTry:                 "WaitTry",
	TaskAskAnswer:               "AskAnswer",
	TaskWaitAnswer:              "WaitAnswer",
	TaskAskRight:                "AskRight",
	TaskWaitRight:               "WaitRight",
	TaskContinueQuestion:        "ContinueQuestion",
	TaskQuestionPostInfo:        "QuestionPostInfo",
	TaskPrintFinal:              "PrintFinal",
	TaskAskToDelete:             "AskToDelete",
	TaskWaitDelete:              "WaitDelete",
	TaskWaitNextPersonDelete:    "WaitNextPersonDelete",
	TaskAskFinalStake:           "AskFinalStake",
	TaskWaitFinalStake:          "WaitFinalStake",
	TaskAnnounce:                "Announce",
	TaskAnnounceStake:           "AnnounceStake",
	TaskEndRound:                "EndRound",
	TaskEndGame:                 "EndGame",
	TaskGoodLuck:                "GoodLuck",
	TaskWaitReport:              "WaitReport",
	TaskPrintAppellation:        "PrintAppellation",
	TaskWaitAppellationDecision: "WaitAppellationDecision",
	TaskCheckAppellation:        "CheckAppellation",
}

func (k TaskKind) String() string {
	if n, ok := taskNames[k]; ok {
		return n
	}
	return "Unknown"
}

// hostInitiated lists the tasks a managed session still auto-advances
// through: interactive waits and interrupt plumbing must fire on their
// own or the game deadlocks on every timeout.
var hostInitiated = map[TaskKind]bool{
	TaskStartGame:               true,
	TaskWaitFirst:               true,
	TaskWaitChoose:              true,
	TaskWaitCat:                 true,
	TaskWaitCatCost:             true,
	TaskWaitStake:               true,
	TaskWaitNextPersonStake:     true,
	TaskWaitTry:                 true,
	TaskWaitAnswer:              true,
	TaskWaitRight:               true,
	TaskWaitDelete:              true,
	TaskWaitNextPersonDelete:    true,
	TaskWaitFinalStake:          true,
	TaskWaitReport:              true,
	TaskPrintAppellation:        true,
	TaskWaitAppellationDecision: true,
	TaskCheckAppellation:        true,
}

// HostInitiated reports whether a task bypasses managed-mode suppression.
func HostInitiated(k TaskKind) bool { return hostInitiated[k] }
