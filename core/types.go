package core

import (
	"time"
)

// Phase is a named stage of the interview.
type Phase string

const (
	PhaseGreeting Phase = "greeting"
	PhaseProject1 Phase = "project_1"
	PhaseProject2 Phase = "project_2"
	PhaseAcademic Phase = "academic"
	PhaseFactual  Phase = "factual"
	PhaseComplete Phase = "complete"
)

var phaseOrder = []Phase{PhaseGreeting, PhaseProject1, PhaseProject2, PhaseAcademic, PhaseFactual, PhaseComplete}

// Index returns the position of p in the interview order, or -1.
func (p Phase) Index() int {
	for i, ph := range phaseOrder {
		if ph == p {
			return i
		}
	}
	return -1
}

func (p Phase) Valid() bool { return p.Index() >= 0 }

// IsProject reports whether p is one of the project discussion phases.
func (p Phase) IsProject() bool { return p == PhaseProject1 || p == PhaseProject2 }

type Role string

const (
	RoleInterviewer Role = "interviewer"
	RoleCandidate   Role = "candidate"
)

// ProjectRecord is one resume project discussed in a project phase.
type ProjectRecord struct {
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
}

// CandidateProfile is created once at intake and never mutated.
type CandidateProfile struct {
	ID          string            `json:"id,omitempty" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	Email       string            `json:"email,omitempty" yaml:"email"`
	GPA         float64           `json:"gpa,omitempty" yaml:"gpa"` // 0 means unknown
	Summary     string            `json:"summary,omitempty" yaml:"summary"`
	Education   string            `json:"education,omitempty" yaml:"education"`
	Fingerprint string            `json:"fingerprint,omitempty" yaml:"fingerprint"`
	Sections    map[string]string `json:"sections,omitempty" yaml:"sections"`
	Projects    []ProjectRecord   `json:"projects,omitempty" yaml:"projects"`
	Topics      []string          `json:"topics,omitempty" yaml:"topics"`
}

// QuestionRef ties an interviewer turn to the bank question it asked.
type QuestionRef struct {
	Topic      string   `json:"topic"`
	Question   string   `json:"question"`
	Similarity *float64 `json:"similarity,omitempty"`
}

// Turn is one utterance in the append-only transcript.
type Turn struct {
	Seq       int          `json:"seq"`
	Role      Role         `json:"role"`
	Text      string       `json:"text"`
	Phase     Phase        `json:"phase"`
	Question  *QuestionRef `json:"question,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// Session is the unit of interview state.
type Session struct {
	ID                  string           `json:"id"`
	Profile             CandidateProfile `json:"profile"`
	Phase               Phase            `json:"phase"`
	Project1Count       int              `json:"project1_count"`
	Project2Count       int              `json:"project2_count"`
	AcademicCount       int              `json:"academic_count"`
	FactualCount        int              `json:"factual_count"`
	CurrentProjectIndex int              `json:"current_project_index"`
	TopicsOfInterest    []string         `json:"topics_of_interest"`
	QuestionsAsked      []string         `json:"questions_asked"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
	CompletedAt         *time.Time       `json:"completed_at,omitempty"`
}

// Clone returns a deep copy so that transitions never alias the caller's slices.
func (s Session) Clone() Session {
	out := s
	out.TopicsOfInterest = append([]string(nil), s.TopicsOfInterest...)
	out.QuestionsAsked = append([]string(nil), s.QuestionsAsked...)
	out.Profile.Projects = append([]ProjectRecord(nil), s.Profile.Projects...)
	out.Profile.Topics = append([]string(nil), s.Profile.Topics...)
	if s.Profile.Sections != nil {
		out.Profile.Sections = make(map[string]string, len(s.Profile.Sections))
		for k, v := range s.Profile.Sections {
			out.Profile.Sections[k] = v
		}
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		out.CompletedAt = &t
	}
	return out
}

// TopicsCovered counts asked questions per topic using the bank's partition.
// Questions the bank does not know are ignored.
func (s Session) TopicsCovered(f TopicFinder) map[string]int {
	covered := make(map[string]int)
	for _, q := range s.QuestionsAsked {
		if topic, ok := f.FindTopic(q); ok {
			covered[topic]++
		}
	}
	return covered
}

// CurrentProject returns the project under discussion, if any.
func (s Session) CurrentProject() (ProjectRecord, bool) {
	if s.CurrentProjectIndex < 0 || s.CurrentProjectIndex >= len(s.Profile.Projects) {
		return ProjectRecord{}, false
	}
	return s.Profile.Projects[s.CurrentProjectIndex], true
}

func (s Session) Complete() bool { return s.Phase == PhaseComplete }

// Selection is the output of the question selector.
type Selection struct {
	Topic         string   `json:"topic"`
	Question      string   `json:"question"`
	Score         *float64 `json:"score,omitempty"`
	MaxSimilarity *float64 `json:"max_similarity,omitempty"`
	Reason        string   `json:"reason"`
	MatchedTopics []string `json:"matched_topics"`
	Fallback      bool     `json:"fallback,omitempty"`
}

// Ref converts the selection into the reference stored on a turn.
func (s Selection) Ref() *QuestionRef {
	return &QuestionRef{Topic: s.Topic, Question: s.Question, Similarity: s.Score}
}

type Correctness string

const (
	Correct          Correctness = "correct"
	PartiallyCorrect Correctness = "partially_correct"
	Incorrect        Correctness = "incorrect"
	Bluffing         Correctness = "bluffing"
)

// Correctnesses lists the labels in report order.
func Correctnesses() []Correctness {
	return []Correctness{Correct, PartiallyCorrect, Incorrect, Bluffing}
}

func (c Correctness) Valid() bool {
	switch c {
	case Correct, PartiallyCorrect, Incorrect, Bluffing:
		return true
	}
	return false
}

// AnswerGrade is what an external grader returns for one factual answer.
type AnswerGrade struct {
	Score             float64     `json:"score"`
	Correctness       Correctness `json:"correctness"`
	Justification     string      `json:"justification,omitempty"`
	ExpectedKeyPoints []string    `json:"expected_key_points,omitempty"`
	AppearsFaking     bool        `json:"appears_to_be_faking,omitempty"`
}

// GradedAnswer is one factual Q/A pair with its grade.
type GradedAnswer struct {
	Topic    string `json:"topic"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	AnswerGrade
	Ungraded bool   `json:"ungraded,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ProjectGrade is what an external grader returns for the project discussion.
type ProjectGrade struct {
	Detail                 float64  `json:"detail"`
	Clarity                float64  `json:"clarity"`
	Socratic               float64  `json:"socratic"`
	DetailJustification    string   `json:"detail_justification,omitempty"`
	ClarityJustification   string   `json:"clarity_justification,omitempty"`
	SocraticJustification  string   `json:"socratic_justification,omitempty"`
	Strengths              []string `json:"strengths,omitempty"`
	Weaknesses             []string `json:"weaknesses,omitempty"`
	ImprovementSuggestions []string `json:"improvement_suggestions,omitempty"`
	FakingDetected         bool     `json:"faking_detected,omitempty"`
	FakingExamples         []string `json:"faking_examples,omitempty"`
	HonestyNote            string   `json:"honesty_note,omitempty"`
}

// ProjectEvaluation is the project section of the report.
type ProjectEvaluation struct {
	ProjectGrade
	Overall         float64  `json:"overall"`
	NotDiscussed    bool     `json:"not_discussed,omitempty"`
	Ungraded        bool     `json:"ungraded,omitempty"`
	Error           string   `json:"error,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// FactualEvaluation is the factual section of the report.
type FactualEvaluation struct {
	Score           float64             `json:"score"`
	TotalQuestions  int                 `json:"total_questions"`
	NoAnswers       bool                `json:"no_answers,omitempty"`
	Counts          map[Correctness]int `json:"counts"`
	Ungraded        int                 `json:"ungraded"`
	AccuracyRate    float64             `json:"accuracy_rate"`
	Answers         []GradedAnswer      `json:"answers"`
	Recommendations []string            `json:"recommendations,omitempty"`
}

// EvaluationReport is the final, weighted evaluation of a session.
type EvaluationReport struct {
	SessionID        string            `json:"session_id"`
	CandidateName    string            `json:"candidate_name"`
	FinalScore       float64           `json:"final_score"`
	PerformanceLevel string            `json:"performance_level"`
	Project          ProjectEvaluation `json:"project"`
	Factual          FactualEvaluation `json:"factual"`
	GeneratedAt      time.Time         `json:"generated_at"`
}
