package game

import (
	"strconv"
	"strings"
)

// Message is one outbound protocol line: an upper-case tag followed by
// space-separated arguments.
type Message struct {
	Tag  string
	Args []string
}

func msg(tag string, args ...string) Message { return Message{Tag: tag, Args: args} }

func (m Message) String() string {
	if len(m.Args) == 0 {
		return m.Tag
	}
	return m.Tag + " " + strings.Join(m.Args, " ")
}

// OutboundChannel delivers messages to participants. Implementations
// must not block the caller: the session loop is single-threaded.
type OutboundChannel interface {
	SendAll(m Message)
	SendTo(person string, m Message)
}

// NopChannel drops everything; useful in tests.
type NopChannel struct{}

func (NopChannel) SendAll(Message)        {}
func (NopChannel) SendTo(string, Message) {}

// Protocol tags.
const (
	MsgStage           = "STAGE"
	MsgPackage         = "PACKAGE"
	MsgFirst           = "FIRST"
	MsgChoose          = "CHOOSE"
	MsgDelete          = "DELETE"
	MsgGameThemes      = "GAMETHEMES"
	MsgRoundThemes     = "ROUNDTHEMES"
	MsgTheme           = "THEME"
	MsgQuestion        = "QUESTION"
	MsgQType           = "QTYPE"
	MsgChoice          = "CHOICE"
	MsgAtom            = "ATOM"
	MsgTry             = "TRY"
	MsgEndTry          = "ENDTRY"
	MsgAnswer          = "ANSWER"
	MsgRightAnswer     = "RIGHTANSWER"
	MsgPerson          = "PERSON"
	MsgSums            = "SUMS"
	MsgStake           = "STAKE"
	MsgPersonStake     = "PERSONSTAKE"
	MsgTimer           = "TIMER"
	MsgValidation      = "VALIDATION"
	MsgSetChooser      = "SETCHOOSER"
	MsgCat             = "CAT"
	MsgCatCost         = "CATCOST"
	MsgFinalRound      = "FINALROUND"
	MsgOut             = "OUT"
	MsgFinalStake      = "FINALSTAKE"
	MsgFinalThink      = "FINALTHINK"
	MsgAppellation     = "APPELLATION"
	MsgPause           = "PAUSE"
	MsgStop            = "STOP"
	MsgCancel          = "CANCEL"
	MsgWinner          = "WINNER"
	MsgGameError       = "GAMEERROR"
	MsgFinish          = "FINISH"
	MsgReport          = "REPORT"
	MsgReplic          = "REPLIC"
	MsgQuestionCaption = "QUESTIONCAPTION"
)

// Timer IDs of the three logical timers.
const (
	TimerRound    = 1
	TimerThinking = 2
	TimerDecision = 3
)

func itoa(n int) string { return strconv.Itoa(n) }

func questionMsg(price int) Message { return msg(MsgQuestion, itoa(price)) }

func choiceMsg(themeIdx, qIdx int) Message { return msg(MsgChoice, itoa(themeIdx), itoa(qIdx)) }

func personMsg(plus bool, playerIdx, delta int) Message {
	sign := "+"
	if !plus {
		sign = "-"
	}
	return msg(MsgPerson, sign, itoa(playerIdx), itoa(delta))
}

// stakeMsg carries the four mode-availability flags plus the minimum bid.
func stakeMsg(nominal, sum, pass, allIn bool, minimum int) Message {
	return msg(MsgStake, flag(nominal), flag(sum), flag(pass), flag(allIn), itoa(minimum))
}

func personStakeMsg(playerIdx int, mode StakeMode, amount int) Message {
	args := []string{itoa(playerIdx), itoa(int(mode))}
	if mode == StakeSum || mode == StakeAllIn {
		args = append(args, itoa(amount))
	}
	return msg(MsgPersonStake, args...)
}

func timerMsg(id int, command string, args ...string) Message {
	return msg(MsgTimer, append([]string{itoa(id), command}, args...)...)
}

func validationMsg(name, answer string, forRight bool, right, wrong []string) Message {
	dir := "+"
	if !forRight {
		dir = "-"
	}
	args := []string{name, answer, dir, itoa(len(right))}
	args = append(args, right...)
	args = append(args, wrong...)
	return msg(MsgValidation, args...)
}

func setChooserMsg(playerIdx int, alsoAnswers bool) Message {
	if alsoAnswers {
		return msg(MsgSetChooser, itoa(playerIdx), "+")
	}
	return msg(MsgSetChooser, itoa(playerIdx))
}

func flag(b bool) string {
	if b {
		return "+"
	}
	return "-"
}
