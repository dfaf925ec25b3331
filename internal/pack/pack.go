// Package pack holds the minimal question-package model the game engine
// traverses. It is a boundary type set: the full authoring format lives
// outside this server and is reduced to what the session needs.
package pack

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

type QuestionKind string

const (
	KindSimple    QuestionKind = "simple"
	KindStake     QuestionKind = "stake"
	KindSecret    QuestionKind = "secret"
	KindSponsored QuestionKind = "sponsored"
)

type AtomKind string

const (
	AtomText  AtomKind = "text"
	AtomOral  AtomKind = "oral"
	AtomImage AtomKind = "image"
	AtomSound AtomKind = "sound"
	AtomVideo AtomKind = "video"
	AtomHTML  AtomKind = "html"
	AtomOther AtomKind = "other"
)

type Atom struct {
	Kind AtomKind `json:"kind"`
	Text string   `json:"text"`
}

// SecretCost describes a selectable price range for secret questions.
// A zero Max means the question's own price is used as-is.
type SecretCost struct {
	Min  int `json:"min"`
	Max  int `json:"max"`
	Step int `json:"step"`
}

type Question struct {
	Price    int          `json:"price"`
	Kind     QuestionKind `json:"kind,omitempty"`
	Body     []Atom       `json:"body"`
	Right    []string     `json:"right"`
	Wrong    []string     `json:"wrong,omitempty"`
	Authors  []string     `json:"authors,omitempty"`
	Sources  []string     `json:"sources,omitempty"`
	Comments string       `json:"comments,omitempty"`
	Secret   *SecretCost  `json:"secret,omitempty"`
}

type Theme struct {
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
	Authors   []string   `json:"authors,omitempty"`
	Sources   []string   `json:"sources,omitempty"`
	Comments  string     `json:"comments,omitempty"`
}

type RoundType string

const (
	RoundStandard RoundType = "standard"
	RoundFinal    RoundType = "final"
)

type Round struct {
	Name   string    `json:"name"`
	Type   RoundType `json:"type,omitempty"`
	Themes []Theme   `json:"themes"`
}

type Package struct {
	Name     string   `json:"name"`
	Authors  []string `json:"authors,omitempty"`
	Sources  []string `json:"sources,omitempty"`
	Comments string   `json:"comments,omitempty"`
	Rounds   []Round  `json:"rounds"`
}

var ErrEmptyPackage = errors.New("empty_package")

func Load(r io.Reader) (*Package, error) {
	var p Package
	dec := json.NewDecoder(r)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode package: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func LoadFile(path string) (*Package, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

func (p *Package) Validate() error {
	if len(p.Rounds) == 0 {
		return ErrEmptyPackage
	}
	for ri, r := range p.Rounds {
		if len(r.Themes) == 0 {
			return fmt.Errorf("round %d (%s): no themes", ri, r.Name)
		}
		for ti, th := range r.Themes {
			for qi, q := range th.Questions {
				if len(q.Right) == 0 {
					return fmt.Errorf("round %d theme %d question %d: no right answer", ri, ti, qi)
				}
			}
		}
	}
	return nil
}

// EffectiveKind maps an unset kind to simple.
func (q *Question) EffectiveKind() QuestionKind {
	if q.Kind == "" {
		return KindSimple
	}
	return q.Kind
}

func (r *Round) IsFinal() bool { return r.Type == RoundFinal }
