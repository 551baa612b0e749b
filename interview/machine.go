// Package interview runs interview sessions: the phase state machine, the
// readiness check and the service that ties them to storage, question
// selection and utterance generation.
package interview

import (
	"fmt"

	"github.com/snow-ghost/interviewer/core"
)

// Thresholds are the exchange counts that end the counted phases.
type Thresholds struct {
	ProjectExchanges int `mapstructure:"project_exchanges" json:"project_exchanges"`
	FactualQuestions int `mapstructure:"factual_questions" json:"factual_questions"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{ProjectExchanges: 4, FactualQuestions: 5}
}

func (t Thresholds) Validate() error {
	if t.ProjectExchanges <= 0 || t.FactualQuestions <= 0 {
		return fmt.Errorf("%w: thresholds must be positive", core.ErrInvalidInput)
	}
	return nil
}

// Decision describes what one candidate turn did to the session.
type Decision struct {
	From core.Phase
	To   core.Phase
	// Phase tags the candidate's utterance, ReplyPhase the interviewer's reply.
	Phase      core.Phase
	ReplyPhase core.Phase
	Action     core.Action
	// NeedsQuestion asks the caller to select a bank question for the reply.
	NeedsQuestion bool
	Complete      bool
}

func (d Decision) Transitioned() bool { return d.From != d.To }

// Machine holds no state; every call maps a session to its successor.
type Machine struct {
	thresholds Thresholds
}

func NewMachine(t Thresholds) *Machine {
	if t.ProjectExchanges <= 0 {
		t.ProjectExchanges = DefaultThresholds().ProjectExchanges
	}
	if t.FactualQuestions <= 0 {
		t.FactualQuestions = DefaultThresholds().FactualQuestions
	}
	return &Machine{thresholds: t}
}

func (m *Machine) Thresholds() Thresholds { return m.thresholds }

// Start returns the decision for the opening line of a new session.
func (m *Machine) Start() Decision {
	return Decision{
		From:       core.PhaseGreeting,
		To:         core.PhaseGreeting,
		Phase:      core.PhaseGreeting,
		ReplyPhase: core.PhaseGreeting,
		Action:     core.ActionGreet,
	}
}

// Advance applies one candidate utterance to s. The input session is not
// modified. A complete session yields core.ErrInterviewComplete.
func (m *Machine) Advance(s core.Session, utterance string) (core.Session, Decision, error) {
	next := s.Clone()
	d := Decision{From: s.Phase, Phase: s.Phase}

	switch s.Phase {
	case core.PhaseGreeting:
		if !IsReady(utterance) {
			d.Action = core.ActionGreetingFollowUp
			break
		}
		if len(s.Profile.Projects) == 0 {
			m.enterAcademic(&next, &d)
			break
		}
		next.Phase = core.PhaseProject1
		next.CurrentProjectIndex = 0
		next.Project1Count = 1
		d.Action = core.ActionOpenProject

	case core.PhaseProject1:
		if s.Project1Count < m.thresholds.ProjectExchanges {
			next.Project1Count++
			d.Action = core.ActionProjectFollowUp
			break
		}
		if len(s.Profile.Projects) < 2 {
			m.enterAcademic(&next, &d)
			break
		}
		next.Phase = core.PhaseProject2
		next.CurrentProjectIndex = 1
		next.Project2Count = 1
		d.Action = core.ActionNextProject

	case core.PhaseProject2:
		if s.Project2Count < m.thresholds.ProjectExchanges {
			next.Project2Count++
			d.Action = core.ActionProjectFollowUp
			break
		}
		m.enterAcademic(&next, &d)

	case core.PhaseAcademic:
		next.Phase = core.PhaseFactual
		next.FactualCount = 1
		d.Action = core.ActionOpenFactual
		d.NeedsQuestion = true

	case core.PhaseFactual:
		if s.FactualCount < m.thresholds.FactualQuestions {
			next.FactualCount++
			d.Action = core.ActionFactualFollowUp
			d.NeedsQuestion = true
			break
		}
		// The wrap-up line still belongs to the factual phase.
		next.Phase = core.PhaseComplete
		d.Action = core.ActionWrapUp
		d.Complete = true

	case core.PhaseComplete:
		return s, Decision{}, core.ErrInterviewComplete

	default:
		return s, Decision{}, fmt.Errorf("%w: unknown phase %q", core.ErrInvalidInput, s.Phase)
	}

	d.To = next.Phase
	d.ReplyPhase = next.Phase
	if d.Complete {
		d.ReplyPhase = core.PhaseFactual
	}
	return next, d, nil
}

func (m *Machine) enterAcademic(next *core.Session, d *Decision) {
	next.Phase = core.PhaseAcademic
	next.AcademicCount = 1
	d.Action = core.ActionAcademic
}
