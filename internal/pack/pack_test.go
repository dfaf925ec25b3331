package pack

import (
	"errors"
	"strings"
	"testing"
)

const samplePackage = `{
  "name": "History Night",
  "authors": ["quizmaster"],
  "rounds": [
    {
      "name": "Round 1",
      "themes": [
        {
          "name": "Battles",
          "questions": [
            {"price": 100, "body": [{"kind": "text", "text": "q1"}], "right": ["a1"]},
            {"price": 200, "kind": "secret",
             "body": [{"kind": "text", "text": "q2"}], "right": ["a2"],
             "secret": {"min": 100, "max": 500, "step": 100}}
          ]
        }
      ]
    },
    {
      "name": "Final",
      "type": "final",
      "themes": [
        {"name": "Dates", "questions": [
          {"price": 0, "body": [{"kind": "text", "text": "fq"}], "right": ["fa"]}
        ]}
      ]
    }
  ]
}`

func TestLoad(t *testing.T) {
	p, err := Load(strings.NewReader(samplePackage))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Name != "History Night" || len(p.Rounds) != 2 {
		t.Fatalf("package = %q with %d rounds", p.Name, len(p.Rounds))
	}
	if p.Rounds[0].IsFinal() || !p.Rounds[1].IsFinal() {
		t.Fatal("round types mixed up")
	}
	q := p.Rounds[0].Themes[0].Questions[1]
	if q.EffectiveKind() != KindSecret || q.Secret == nil || q.Secret.Max != 500 {
		t.Fatalf("secret question = %+v", q)
	}
	if p.Rounds[0].Themes[0].Questions[0].EffectiveKind() != KindSimple {
		t.Fatal("unset kind not treated as simple")
	}
}

func TestLoadRejectsBadJSON(t *testing.T) {
	if _, err := Load(strings.NewReader("{not json")); err == nil {
		t.Fatal("malformed input accepted")
	}
}

func TestValidate(t *testing.T) {
	if err := (&Package{}).Validate(); !errors.Is(err, ErrEmptyPackage) {
		t.Fatalf("empty package: %v", err)
	}

	p := &Package{Rounds: []Round{{Name: "r"}}}
	if err := p.Validate(); err == nil {
		t.Fatal("round without themes accepted")
	}

	p = &Package{Rounds: []Round{{
		Name:   "r",
		Themes: []Theme{{Name: "t", Questions: []Question{{Price: 100}}}},
	}}}
	if err := p.Validate(); err == nil {
		t.Fatal("question without a right answer accepted")
	}
}
