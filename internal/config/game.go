package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// GameConfig carries every tunable delay of the session state machine.
// Durations are env-parsed ("30s", "10m").
type GameConfig struct {
	Managed        bool `env:"GAME_MANAGED" envDefault:"false"`
	AutomaticStart bool `env:"GAME_AUTO_START" envDefault:"true"`
	FalseStart     bool `env:"GAME_FALSE_START" envDefault:"true"`

	RoundTime       time.Duration `env:"GAME_ROUND_TIME" envDefault:"10m"`
	ChooseTime      time.Duration `env:"GAME_CHOOSE_TIME" envDefault:"30s"`
	PressTime       time.Duration `env:"GAME_PRESS_TIME" envDefault:"5s"`
	AnswerTime      time.Duration `env:"GAME_ANSWER_TIME" envDefault:"25s"`
	ValidationTime  time.Duration `env:"GAME_VALIDATION_TIME" envDefault:"30s"`
	StakeTime       time.Duration `env:"GAME_STAKE_TIME" envDefault:"30s"`
	CatGiveTime     time.Duration `env:"GAME_CAT_GIVE_TIME" envDefault:"30s"`
	CatCostTime     time.Duration `env:"GAME_CAT_COST_TIME" envDefault:"30s"`
	DeleteTime      time.Duration `env:"GAME_DELETE_TIME" envDefault:"30s"`
	FinalStakeTime  time.Duration `env:"GAME_FINAL_STAKE_TIME" envDefault:"45s"`
	FinalThinkTime  time.Duration `env:"GAME_FINAL_THINK_TIME" envDefault:"45s"`
	AppellationTime time.Duration `env:"GAME_APPELLATION_TIME" envDefault:"40s"`
	ReportTime      time.Duration `env:"GAME_REPORT_TIME" envDefault:"45s"`

	// StepDelay paces announcements; AtomTime is granted per content
	// atom on top of a per-character reading allowance.
	StepDelay    time.Duration `env:"GAME_STEP_DELAY" envDefault:"1s"`
	AtomTime     time.Duration `env:"GAME_ATOM_TIME" envDefault:"3s"`
	ReadingSpeed int           `env:"GAME_READING_SPEED" envDefault:"20"`
}

func LoadGame() (GameConfig, error) {
	var cfg GameConfig
	err := env.Parse(&cfg)
	return cfg, err
}
