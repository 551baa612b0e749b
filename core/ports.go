package core

import "context"

// Action tells the utterance generator what kind of line to produce.
type Action string

const (
	ActionGreet            Action = "greet"
	ActionGreetingFollowUp Action = "greeting_follow_up"
	ActionOpenProject      Action = "open_project"
	ActionNextProject      Action = "next_project"
	ActionProjectFollowUp  Action = "project_follow_up"
	ActionAcademic         Action = "academic"
	ActionOpenFactual      Action = "open_factual"
	ActionFactualFollowUp  Action = "factual_follow_up"
	ActionWrapUp           Action = "wrap_up"
)

// UtteranceRequest is everything the generator may use; it never feeds back into control flow.
type UtteranceRequest struct {
	Phase         Phase
	Action        Action
	CandidateName string
	ResumeSummary string
	Project       *ProjectRecord
	ProjectNumber int
	ProjectTotal  int
	GPA           float64
	Education     string
	Question      *Selection
	Transcript    []Turn
}

type UtteranceGenerator interface {
	GenerateUtterance(ctx context.Context, req UtteranceRequest) (string, error)
}

type AnswerGrader interface {
	GradeAnswer(ctx context.Context, question, answer string) (AnswerGrade, error)
}

type ProjectGrader interface {
	GradeProjectDiscussion(ctx context.Context, candidateName string, transcript []Turn) (ProjectGrade, error)
}

// TopicExtractor proposes topics of interest for a profile, chosen from allowed.
type TopicExtractor interface {
	ExtractTopics(ctx context.Context, profile CandidateProfile, allowed []string) ([]string, error)
}

type RecommendationKind string

const (
	RecommendProject RecommendationKind = "project"
	RecommendFactual RecommendationKind = "factual"
)

type RecommendationRequest struct {
	Kind       RecommendationKind
	Evaluation any
	Transcript []Turn
}

type Recommender interface {
	Recommend(ctx context.Context, req RecommendationRequest) ([]string, error)
}

// TopicFinder maps a question back to its topic.
type TopicFinder interface {
	FindTopic(question string) (string, bool)
}

// SessionStore is the durable key-value / append log keyed by session id.
type SessionStore interface {
	CreateSession(ctx context.Context, s Session) error
	SaveSession(ctx context.Context, s Session) error
	LoadSession(ctx context.Context, id string) (Session, error)
	AppendTurn(ctx context.Context, sessionID string, turn Turn) error
	// CommitTurn saves s and appends turns to its transcript as one write.
	// On error nothing is stored.
	CommitTurn(ctx context.Context, s Session, turns ...Turn) error
	Turns(ctx context.Context, sessionID string) ([]Turn, error)
	SaveEvaluation(ctx context.Context, report EvaluationReport) error
	LoadEvaluation(ctx context.Context, sessionID string) (EvaluationReport, error)
	// PendingEvaluations lists completed sessions that have no stored report.
	PendingEvaluations(ctx context.Context) ([]string, error)
	Close() error
}
