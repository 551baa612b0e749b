package llm

import (
	"fmt"

	"github.com/snow-ghost/interviewer/core"
)

// projectProbes walk fundamentals, practicals and research in order.
var projectProbes = []string{
	"Alright. What is the core idea behind the approach you used, and why did you pick it?",
	"I see. How did you actually implement the main part of it, and what was the hardest problem you hit?",
	"Got it. Why did you choose that tooling over the alternatives you had?",
	"Hmm. What are the limitations of your approach, and how would you scale it?",
}

// Scripted returns a neutral line for req without calling any backend. It is
// the fallback whenever generation fails and the whole output of offline runs.
func Scripted(req core.UtteranceRequest) string {
	first := core.FirstName(req.CandidateName)
	if first == "" {
		first = "there"
	}

	switch req.Action {
	case core.ActionGreet:
		return fmt.Sprintf("Hi %s, welcome to the interview. Your resume stood out to us, so today I'll ask about your projects and then a few machine learning questions. Are you ready to get started?", first)
	case core.ActionGreetingFollowUp:
		return "No problem. Just let me know when you're ready and we'll start with your projects."
	case core.ActionOpenProject:
		return fmt.Sprintf("Let's start with your project %s. Can you explain what it does and what your role was?", projectTitle(req))
	case core.ActionNextProject:
		return fmt.Sprintf("Alright, let's talk about your other project, %s. What does it do and what was your part in it?", projectTitle(req))
	case core.ActionProjectFollowUp:
		return projectProbes[interviewerTurns(req.Transcript, req.Phase)%len(projectProbes)]
	case core.ActionAcademic:
		return "Before we get to the technical questions, I'd like to hear about your academic journey. " + academicQuestion(req.GPA)
	case core.ActionOpenFactual:
		return "Alright, let's move to some ML theory and concepts. " + questionText(req)
	case core.ActionFactualFollowUp:
		return "Got it. Next question: " + questionText(req)
	case core.ActionWrapUp:
		return fmt.Sprintf("That wraps up our interview. Thank you for your time, %s; we'll be in touch soon.", first)
	}
	return "Could you tell me a bit more about that?"
}

func academicQuestion(gpa float64) string {
	switch {
	case gpa > 0 && gpa < 8.0:
		return fmt.Sprintf("Your GPA is %v out of 10. What challenges did you run into during your studies?", gpa)
	case gpa >= 8.0:
		return fmt.Sprintf("You kept a GPA of %v out of 10. How did you balance coursework with your projects?", gpa)
	}
	return "What was the most challenging part of your studies, and how did you handle it?"
}

func projectTitle(req core.UtteranceRequest) string {
	if req.Project == nil || req.Project.Title == "" {
		return "that you listed"
	}
	return req.Project.Title
}

func questionText(req core.UtteranceRequest) string {
	if req.Question == nil {
		return "Can you explain the bias-variance tradeoff?"
	}
	return req.Question.Question
}

// interviewerTurns counts interviewer lines already spoken in phase, which is
// the number of project exchanges so far minus the opening.
func interviewerTurns(turns []core.Turn, phase core.Phase) int {
	n := 0
	for _, t := range turns {
		if t.Role == core.RoleInterviewer && t.Phase == phase {
			n++
		}
	}
	if n > 0 {
		n--
	}
	return n
}
