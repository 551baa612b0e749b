package kb

import (
	"errors"
	"fmt"
	"strings"
)

// Fallback returned by the selector once every question has been asked.
const (
	DefaultTopic    = "Fundamentals & Theory"
	DefaultQuestion = "Explain the bias-variance tradeoff in machine learning?"
)

// MinTopics is how many topics ResolveTopics pads a candidate's list to.
const MinTopics = 4

// PaddingTopics are appended, in order, when too few topics are resolved.
var PaddingTopics = []string{
	"Fundamentals & Theory",
	"Neural Networks & Deep Learning",
	"Model Evaluation & Metrics",
	"Computer Vision",
}

// Topic is a named, ordered group of questions.
type Topic struct {
	Name      string   `yaml:"name" json:"name"`
	Questions []string `yaml:"questions" json:"questions"`
}

// Entry is one question with its topic, in bank order.
type Entry struct {
	Topic    string
	Question string
}

// Bank is an immutable partition of questions into topics.
// It is safe for concurrent use.
type Bank struct {
	topics     []Topic
	topicIndex map[string]int
	byQuestion map[string]string
	entries    []Entry
}

// New builds a bank. Blank questions are skipped and a question that appears
// more than once keeps its first topic, so FindTopic stays a function.
func New(topics []Topic) (*Bank, error) {
	b := &Bank{
		topicIndex: make(map[string]int, len(topics)),
		byQuestion: make(map[string]string),
	}
	for _, t := range topics {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return nil, errors.New("topic name must not be empty")
		}
		if _, dup := b.topicIndex[name]; dup {
			return nil, fmt.Errorf("duplicate topic %q", name)
		}
		kept := make([]string, 0, len(t.Questions))
		for _, q := range t.Questions {
			q = strings.TrimSpace(q)
			if q == "" {
				continue
			}
			if _, seen := b.byQuestion[q]; seen {
				continue
			}
			b.byQuestion[q] = name
			kept = append(kept, q)
			b.entries = append(b.entries, Entry{Topic: name, Question: q})
		}
		b.topicIndex[name] = len(b.topics)
		b.topics = append(b.topics, Topic{Name: name, Questions: kept})
	}
	if len(b.entries) == 0 {
		return nil, errors.New("question bank has no questions")
	}
	return b, nil
}

// MustNew is New for static data known to be valid.
func MustNew(topics []Topic) *Bank {
	b, err := New(topics)
	if err != nil {
		panic(err)
	}
	return b
}

// Topics returns topic names in bank order.
func (b *Bank) Topics() []string {
	out := make([]string, len(b.topics))
	for i, t := range b.topics {
		out[i] = t.Name
	}
	return out
}

// Questions returns the ordered questions of a topic, or nil if unknown.
func (b *Bank) Questions(topic string) []string {
	i, ok := b.topicIndex[topic]
	if !ok {
		return nil
	}
	return append([]string(nil), b.topics[i].Questions...)
}

func (b *Bank) HasTopic(topic string) bool {
	_, ok := b.topicIndex[topic]
	return ok
}

func (b *Bank) Contains(topic, question string) bool {
	t, ok := b.byQuestion[question]
	return ok && t == topic
}

// FindTopic implements core.TopicFinder.
func (b *Bank) FindTopic(question string) (string, bool) {
	t, ok := b.byQuestion[question]
	return t, ok
}

// Entries returns every question in bank order.
func (b *Bank) Entries() []Entry {
	return append([]Entry(nil), b.entries...)
}

func (b *Bank) Len() int { return len(b.entries) }

// ValidateTopics keeps the known topics from names, deduplicated, in input order.
func (b *Bank) ValidateTopics(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if !b.HasTopic(n) || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// ResolveTopics validates names and pads the result to MinTopics with PaddingTopics.
func (b *Bank) ResolveTopics(names []string) []string {
	out := b.ValidateTopics(names)
	for _, p := range PaddingTopics {
		if len(out) >= MinTopics {
			break
		}
		if b.HasTopic(p) && !contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
