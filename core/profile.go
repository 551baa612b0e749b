package core

import (
	"fmt"
	"strings"
)

// Resume section headings recognised by the profile helpers.
const (
	SectionEducation       = "Education"
	SectionWorkExperience  = "Work Experience"
	SectionProjects        = "Projects"
	SectionTechnicalSkills = "Technical Skills"
)

var fingerprintSections = []string{SectionProjects, SectionWorkExperience, SectionTechnicalSkills}

// FirstName returns the first whitespace-separated part of a full name.
func FirstName(full string) string {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// ResumeSummary condenses resume sections into a short context paragraph.
func ResumeSummary(sections map[string]string) string {
	var parts []string
	add := func(section, label string, lines int) {
		content, ok := sections[section]
		if !ok {
			return
		}
		parts = append(parts, fmt.Sprintf("%s: %s", label, strings.Join(firstLines(content, lines), " ")))
	}
	add(SectionEducation, "Education", 2)
	add(SectionWorkExperience, "Experience", 3)
	add(SectionProjects, "Projects", 2)
	return strings.Join(parts, "\n\n")
}

// BuildFingerprint joins the sections that describe what the candidate has built.
func BuildFingerprint(sections map[string]string) string {
	var b strings.Builder
	for _, name := range fingerprintSections {
		if content, ok := sections[name]; ok {
			fmt.Fprintf(&b, "\n%s:\n%s\n", name, content)
		}
	}
	return b.String()
}

// GPAContext phrases the academic question guidance for a 10-point GPA.
func GPAContext(gpa float64) string {
	switch {
	case gpa > 0 && gpa < 8.0:
		return fmt.Sprintf("The student's GPA is %v/10, which is below 8.0. Ask about the challenges they faced or reasons for this GPA in a supportive, non-judgmental way.", gpa)
	case gpa >= 8.0:
		return fmt.Sprintf("The student has a good GPA of %v/10. Ask them how they maintained this performance or any challenges they faced balancing academics with projects.", gpa)
	default:
		return "GPA information not available. Ask general questions about their academic experience and challenges."
	}
}

// FingerprintText returns the explicit fingerprint or one built from resume sections.
func (p CandidateProfile) FingerprintText() string {
	if fp := strings.TrimSpace(p.Fingerprint); fp != "" {
		return fp
	}
	return strings.TrimSpace(BuildFingerprint(p.Sections))
}

func (p CandidateProfile) SummaryText() string {
	if s := strings.TrimSpace(p.Summary); s != "" {
		return s
	}
	return ResumeSummary(p.Sections)
}

func (p CandidateProfile) EducationText() string {
	if e := strings.TrimSpace(p.Education); e != "" {
		return e
	}
	return p.Sections[SectionEducation]
}

// Validate rejects profiles the interview cannot run with.
func (p CandidateProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: candidate name is required", ErrInvalidInput)
	}
	if p.GPA < 0 || p.GPA > 10 {
		return fmt.Errorf("%w: gpa %v outside [0,10]", ErrInvalidInput, p.GPA)
	}
	for i, pr := range p.Projects {
		if strings.TrimSpace(pr.Title) == "" {
			return fmt.Errorf("%w: project %d has no title", ErrInvalidInput, i+1)
		}
	}
	return nil
}

func firstLines(s string, n int) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return lines
}
