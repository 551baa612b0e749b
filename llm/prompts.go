package llm

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

var prompts = template.Must(template.New("prompts").ParseFS(promptFS, "prompts/*.tmpl"))

// PromptData feeds every prompt template; each template uses a subset.
type PromptData struct {
	Persona        string
	Company        string
	FirstName      string
	ResumeSummary  string
	ProjectTitle   string
	ProjectContent string
	ProjectNumber  int
	ProjectTotal   int
	GPAContext     string
	Education      string
	Topic          string
	Question       string
	Answer         string
	Final          bool
	Allowed        []string
	Resume         string
	Transcript     string
	EvaluationJSON string
}

func render(name string, data PromptData) (string, error) {
	var b strings.Builder
	if err := prompts.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return strings.TrimSpace(b.String()), nil
}
