// Package profiles reads candidate profiles from YAML files.
package profiles

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/snow-ghost/interviewer/core"
)

// Parse decodes and validates one profile.
func Parse(data []byte) (core.CandidateProfile, error) {
	var p core.CandidateProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return core.CandidateProfile{}, fmt.Errorf("failed to parse profile YAML: %w", err)
	}
	if err := p.Validate(); err != nil {
		return core.CandidateProfile{}, err
	}
	return p, nil
}

func Load(path string) (core.CandidateProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.CandidateProfile{}, fmt.Errorf("failed to read profile %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return core.CandidateProfile{}, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// LoadDir loads every .yaml/.yml file in dir, keyed by file name without
// extension.
func LoadDir(dir string) (map[string]core.CandidateProfile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles dir %s: %w", dir, err)
	}

	out := make(map[string]core.CandidateProfile)
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		p, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		out[strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))] = p
	}
	return out, nil
}

// Names returns the keys of set in sorted order.
func Names(set map[string]core.CandidateProfile) []string {
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
