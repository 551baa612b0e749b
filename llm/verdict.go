package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/snow-ghost/interviewer/core"
)

// ErrMalformedVerdict marks grader output that cannot be trusted as a grade.
var ErrMalformedVerdict = errors.New("malformed verdict")

type answerVerdict struct {
	Score             *float64 `mapstructure:"score"`
	Correctness       string   `mapstructure:"correctness"`
	Justification     string   `mapstructure:"justification"`
	ExpectedKeyPoints []string `mapstructure:"expected_key_points"`
	AppearsFaking     bool     `mapstructure:"appears_to_be_faking"`
}

type projectVerdict struct {
	Detail                 *float64 `mapstructure:"detail_level"`
	Clarity                *float64 `mapstructure:"clarity"`
	Socratic               *float64 `mapstructure:"socrates_metric"`
	DetailJustification    string   `mapstructure:"detail_justification"`
	ClarityJustification   string   `mapstructure:"clarity_justification"`
	SocraticJustification  string   `mapstructure:"socrates_justification"`
	FakingDetected         bool     `mapstructure:"faking_detected"`
	FakingExamples         []string `mapstructure:"faking_examples"`
	Strengths              []string `mapstructure:"strengths"`
	Weaknesses             []string `mapstructure:"weaknesses"`
	ImprovementSuggestions []string `mapstructure:"improvement_suggestions"`
	HonestyNote            string   `mapstructure:"honesty_note"`
}

type recommendations struct {
	Recommendations []string `mapstructure:"recommendations"`
}

// ParseAnswerVerdict decodes a per-answer grade. Numbers given as strings are
// accepted; a missing or out of range score and an unknown label are not.
func ParseAnswerVerdict(raw string) (core.AnswerGrade, error) {
	var v answerVerdict
	if err := decodeVerdict(raw, &v); err != nil {
		return core.AnswerGrade{}, err
	}
	if v.Score == nil {
		return core.AnswerGrade{}, fmt.Errorf("%w: missing score", ErrMalformedVerdict)
	}
	if err := checkRange("score", *v.Score); err != nil {
		return core.AnswerGrade{}, err
	}
	label := NormalizeCorrectness(v.Correctness)
	if !label.Valid() {
		return core.AnswerGrade{}, fmt.Errorf("%w: unknown correctness %q", ErrMalformedVerdict, v.Correctness)
	}
	return core.AnswerGrade{
		Score:             *v.Score,
		Correctness:       label,
		Justification:     strings.TrimSpace(v.Justification),
		ExpectedKeyPoints: v.ExpectedKeyPoints,
		AppearsFaking:     v.AppearsFaking || label == core.Bluffing,
	}, nil
}

// ParseProjectVerdict decodes the project discussion grade.
func ParseProjectVerdict(raw string) (core.ProjectGrade, error) {
	var v projectVerdict
	if err := decodeVerdict(raw, &v); err != nil {
		return core.ProjectGrade{}, err
	}
	scores := []struct {
		name  string
		value *float64
	}{
		{"detail_level", v.Detail},
		{"clarity", v.Clarity},
		{"socrates_metric", v.Socratic},
	}
	for _, s := range scores {
		if s.value == nil {
			return core.ProjectGrade{}, fmt.Errorf("%w: missing %s", ErrMalformedVerdict, s.name)
		}
		if err := checkRange(s.name, *s.value); err != nil {
			return core.ProjectGrade{}, err
		}
	}
	return core.ProjectGrade{
		Detail:                 *v.Detail,
		Clarity:                *v.Clarity,
		Socratic:               *v.Socratic,
		DetailJustification:    v.DetailJustification,
		ClarityJustification:   v.ClarityJustification,
		SocraticJustification:  v.SocraticJustification,
		Strengths:              v.Strengths,
		Weaknesses:             v.Weaknesses,
		ImprovementSuggestions: v.ImprovementSuggestions,
		FakingDetected:         v.FakingDetected,
		FakingExamples:         v.FakingExamples,
		HonestyNote:            v.HonestyNote,
	}, nil
}

// ParseRecommendations decodes {"recommendations": [...]}, dropping blanks.
func ParseRecommendations(raw string) ([]string, error) {
	var v recommendations
	if err := decodeVerdict(raw, &v); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(v.Recommendations))
	for _, r := range v.Recommendations {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no recommendations", ErrMalformedVerdict)
	}
	return out, nil
}

// NormalizeCorrectness maps the labels graders actually produce
// ("Partially Correct", "partially-correct", "faking") onto core labels.
func NormalizeCorrectness(s string) core.Correctness {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	switch s {
	case "partial", "partially":
		return core.PartiallyCorrect
	case "faking", "bluff", "bluffing/faking", "bluffing_faking":
		return core.Bluffing
	case "wrong":
		return core.Incorrect
	}
	return core.Correctness(s)
}

func checkRange(name string, v float64) error {
	if v < 0 || v > 10 {
		return fmt.Errorf("%w: %s %.2f outside [0,10]", ErrMalformedVerdict, name, v)
	}
	return nil
}

// decodeVerdict takes the outermost JSON object in raw, so fenced or chatty
// completions still parse, and decodes it weakly typed into out.
func decodeVerdict(raw string, out any) error {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("%w: no JSON object", ErrMalformedVerdict)
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(raw[start:end+1]), &fields); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedVerdict, err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(fields); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedVerdict, err)
	}
	return nil
}
