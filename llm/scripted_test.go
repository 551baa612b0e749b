package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/snow-ghost/interviewer/core"
)

func TestScripted(t *testing.T) {
	q := &core.Selection{Topic: "Computer Vision", Question: "What is a convolution?"}
	p := &core.ProjectRecord{Title: "Lane Detector"}

	assert.Contains(t, Scripted(core.UtteranceRequest{Action: core.ActionGreet, CandidateName: "Ada Lovelace"}), "Hi Ada")
	assert.Equal(t, "Let's start with your project Lane Detector. Can you explain what it does and what your role was?",
		Scripted(core.UtteranceRequest{Action: core.ActionOpenProject, Project: p}))
	assert.Equal(t, "Alright, let's move to some ML theory and concepts. What is a convolution?",
		Scripted(core.UtteranceRequest{Action: core.ActionOpenFactual, Question: q}))
	assert.Equal(t, "Got it. Next question: What is a convolution?",
		Scripted(core.UtteranceRequest{Action: core.ActionFactualFollowUp, Question: q}))
	assert.Equal(t, "That wraps up our interview. Thank you for your time, Ada; we'll be in touch soon.",
		Scripted(core.UtteranceRequest{Action: core.ActionWrapUp, CandidateName: "Ada"}))
	assert.Contains(t, Scripted(core.UtteranceRequest{Action: core.ActionAcademic, GPA: 9}), "9 out of 10")
}

func TestScriptedProjectFollowUpsRotate(t *testing.T) {
	var turns []core.Turn
	seen := make(map[string]bool)
	turns = append(turns, core.Turn{Role: core.RoleInterviewer, Phase: core.PhaseProject1, Text: "opening"})

	for i := 0; i < len(projectProbes); i++ {
		line := Scripted(core.UtteranceRequest{Action: core.ActionProjectFollowUp, Phase: core.PhaseProject1, Transcript: turns})
		assert.False(t, seen[line], "repeated probe %q", line)
		seen[line] = true
		turns = append(turns,
			core.Turn{Role: core.RoleCandidate, Phase: core.PhaseProject1, Text: "answer"},
			core.Turn{Role: core.RoleInterviewer, Phase: core.PhaseProject1, Text: line},
		)
	}
	assert.Len(t, seen, len(projectProbes))
}
