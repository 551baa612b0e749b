package interview

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snow-ghost/interviewer/core"
)

func twoProjects() core.CandidateProfile {
	return core.CandidateProfile{
		Name: "Ada Lovelace",
		GPA:  8.7,
		Projects: []core.ProjectRecord{
			{Title: "Detector", Content: "object detection"},
			{Title: "Translator", Content: "seq2seq"},
		},
	}
}

func TestMachineTransitions(t *testing.T) {
	m := NewMachine(DefaultThresholds())

	tests := []struct {
		name      string
		session   core.Session
		utterance string
		wantPhase core.Phase
		wantReply core.Phase
		action    core.Action
		question  bool
		complete  bool
		check     func(t *testing.T, s core.Session)
	}{
		{
			name:      "greeting waits for readiness",
			session:   core.Session{Phase: core.PhaseGreeting, Profile: twoProjects()},
			utterance: "hello, nice to meet you",
			wantPhase: core.PhaseGreeting,
			wantReply: core.PhaseGreeting,
			action:    core.ActionGreetingFollowUp,
		},
		{
			name:      "ready opens first project",
			session:   core.Session{Phase: core.PhaseGreeting, Profile: twoProjects()},
			utterance: "yes",
			wantPhase: core.PhaseProject1,
			wantReply: core.PhaseProject1,
			action:    core.ActionOpenProject,
			check: func(t *testing.T, s core.Session) {
				assert.Equal(t, 1, s.Project1Count)
				assert.Equal(t, 0, s.CurrentProjectIndex)
			},
		},
		{
			name:      "ready without projects goes to academic",
			session:   core.Session{Phase: core.PhaseGreeting, Profile: core.CandidateProfile{Name: "A"}},
			utterance: "ready",
			wantPhase: core.PhaseAcademic,
			wantReply: core.PhaseAcademic,
			action:    core.ActionAcademic,
		},
		{
			name:      "project one below threshold",
			session:   core.Session{Phase: core.PhaseProject1, Project1Count: 3, Profile: twoProjects()},
			utterance: "it used YOLO",
			wantPhase: core.PhaseProject1,
			wantReply: core.PhaseProject1,
			action:    core.ActionProjectFollowUp,
			check: func(t *testing.T, s core.Session) {
				assert.Equal(t, 4, s.Project1Count)
			},
		},
		{
			name:      "project one at threshold moves on",
			session:   core.Session{Phase: core.PhaseProject1, Project1Count: 4, Profile: twoProjects()},
			utterance: "that's all",
			wantPhase: core.PhaseProject2,
			wantReply: core.PhaseProject2,
			action:    core.ActionNextProject,
			check: func(t *testing.T, s core.Session) {
				assert.Equal(t, 1, s.Project2Count)
				assert.Equal(t, 1, s.CurrentProjectIndex)
			},
		},
		{
			name:      "project one past threshold moves on",
			session:   core.Session{Phase: core.PhaseProject1, Project1Count: 5, Profile: twoProjects()},
			utterance: "anything else?",
			wantPhase: core.PhaseProject2,
			wantReply: core.PhaseProject2,
			action:    core.ActionNextProject,
			check: func(t *testing.T, s core.Session) {
				assert.Equal(t, 5, s.Project1Count)
				assert.Equal(t, 1, s.Project2Count)
			},
		},
		{
			name: "single project skips project two",
			session: core.Session{Phase: core.PhaseProject1, Project1Count: 4,
				Profile: core.CandidateProfile{Name: "A", Projects: twoProjects().Projects[:1]}},
			utterance: "done",
			wantPhase: core.PhaseAcademic,
			wantReply: core.PhaseAcademic,
			action:    core.ActionAcademic,
		},
		{
			name:      "project two below threshold",
			session:   core.Session{Phase: core.PhaseProject2, Project2Count: 3, CurrentProjectIndex: 1, Profile: twoProjects()},
			utterance: "we used beam search",
			wantPhase: core.PhaseProject2,
			wantReply: core.PhaseProject2,
			action:    core.ActionProjectFollowUp,
			check: func(t *testing.T, s core.Session) {
				assert.Equal(t, 4, s.Project2Count)
			},
		},
		{
			name:      "project two past threshold goes to academic",
			session:   core.Session{Phase: core.PhaseProject2, Project2Count: 5, Profile: twoProjects()},
			utterance: "done",
			wantPhase: core.PhaseAcademic,
			wantReply: core.PhaseAcademic,
			action:    core.ActionAcademic,
		},
		{
			name:      "project two at threshold goes to academic",
			session:   core.Session{Phase: core.PhaseProject2, Project2Count: 4, Profile: twoProjects()},
			utterance: "done",
			wantPhase: core.PhaseAcademic,
			wantReply: core.PhaseAcademic,
			action:    core.ActionAcademic,
		},
		{
			name:      "academic opens factual",
			session:   core.Session{Phase: core.PhaseAcademic, AcademicCount: 1, Profile: twoProjects()},
			utterance: "I balanced coursework and research",
			wantPhase: core.PhaseFactual,
			wantReply: core.PhaseFactual,
			action:    core.ActionOpenFactual,
			question:  true,
			check: func(t *testing.T, s core.Session) {
				assert.Equal(t, 1, s.FactualCount)
			},
		},
		{
			name:      "factual below threshold asks another",
			session:   core.Session{Phase: core.PhaseFactual, FactualCount: 4, Profile: twoProjects()},
			utterance: "gradient descent",
			wantPhase: core.PhaseFactual,
			wantReply: core.PhaseFactual,
			action:    core.ActionFactualFollowUp,
			question:  true,
			check: func(t *testing.T, s core.Session) {
				assert.Equal(t, 5, s.FactualCount)
			},
		},
		{
			name:      "fifth factual answer completes",
			session:   core.Session{Phase: core.PhaseFactual, FactualCount: 5, Profile: twoProjects()},
			utterance: "regularization",
			wantPhase: core.PhaseComplete,
			wantReply: core.PhaseFactual,
			action:    core.ActionWrapUp,
			complete:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.session.Clone()
			next, d, err := m.Advance(tt.session, tt.utterance)
			require.NoError(t, err)

			assert.Equal(t, tt.wantPhase, next.Phase)
			assert.Equal(t, tt.session.Phase, d.Phase, "candidate turn keeps the phase it was spoken in")
			assert.Equal(t, tt.wantReply, d.ReplyPhase)
			assert.Equal(t, tt.action, d.Action)
			assert.Equal(t, tt.question, d.NeedsQuestion)
			assert.Equal(t, tt.complete, d.Complete)
			assert.Equal(t, before, tt.session, "input session is not modified")
			if tt.check != nil {
				tt.check(t, next)
			}
		})
	}
}

func TestMachineRejects(t *testing.T) {
	m := NewMachine(Thresholds{})
	assert.Equal(t, DefaultThresholds(), m.Thresholds())

	_, _, err := m.Advance(core.Session{Phase: core.PhaseComplete}, "hi")
	assert.True(t, errors.Is(err, core.ErrInterviewComplete))

	_, _, err = m.Advance(core.Session{Phase: "lunch"}, "hi")
	assert.True(t, errors.Is(err, core.ErrInvalidInput))
}

func TestMachineFullRun(t *testing.T) {
	m := NewMachine(Thresholds{ProjectExchanges: 2, FactualQuestions: 3})
	s := core.Session{Phase: core.PhaseGreeting, Profile: twoProjects()}

	var phases []core.Phase
	for !s.Complete() {
		var err error
		s, _, err = m.Advance(s, "yes")
		require.NoError(t, err)
		phases = append(phases, s.Phase)
	}

	// ready, 2+2 project exchanges, academic, 3 factual answers
	assert.Equal(t, []core.Phase{
		core.PhaseProject1, core.PhaseProject1,
		core.PhaseProject2, core.PhaseProject2,
		core.PhaseAcademic,
		core.PhaseFactual, core.PhaseFactual, core.PhaseFactual,
		core.PhaseComplete,
	}, phases)
}

func TestThresholdsValidate(t *testing.T) {
	require.NoError(t, DefaultThresholds().Validate())
	assert.Error(t, Thresholds{ProjectExchanges: 0, FactualQuestions: 5}.Validate())
}
