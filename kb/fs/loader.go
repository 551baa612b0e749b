package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/snow-ghost/interviewer/kb"
)

// bankFile is the on-disk YAML layout of a question bank.
type bankFile struct {
	Topics []kb.Topic `yaml:"topics"`
}

// SheetConfig describes where questions live in a spreadsheet.
type SheetConfig struct {
	SheetName      string // empty means the first sheet
	TopicColumn    string
	QuestionColumn string
	StartRow       int // 1-based
}

// DefaultSheetConfig reads topics from column A and questions from column B, skipping a header row.
func DefaultSheetConfig() SheetConfig {
	return SheetConfig{
		TopicColumn:    "A",
		QuestionColumn: "B",
		StartRow:       2,
	}
}

// Load reads a bank from a .yaml/.yml or .xlsx file.
func Load(path string) (*kb.Bank, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read bank file %s: %w", path, err)
		}
		return LoadYAML(data)
	case ".xlsx":
		return LoadXLSX(path, DefaultSheetConfig())
	default:
		return nil, fmt.Errorf("unsupported bank file extension %q", ext)
	}
}

// LoadYAML parses a bank from YAML bytes.
func LoadYAML(data []byte) (*kb.Bank, error) {
	var f bankFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse bank YAML: %w", err)
	}
	return kb.New(f.Topics)
}

// MarshalYAML renders a bank in the format LoadYAML reads.
func MarshalYAML(b *kb.Bank) ([]byte, error) {
	f := bankFile{}
	for _, name := range b.Topics() {
		f.Topics = append(f.Topics, kb.Topic{Name: name, Questions: b.Questions(name)})
	}
	return yaml.Marshal(f)
}

// LoadXLSX reads one (topic, question) pair per row. Topics keep the order of
// their first appearance.
func LoadXLSX(path string, cfg SheetConfig) (*kb.Bank, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := cfg.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	topicCol, err := columnIndex(cfg.TopicColumn)
	if err != nil {
		return nil, err
	}
	questionCol, err := columnIndex(cfg.QuestionColumn)
	if err != nil {
		return nil, err
	}
	start := cfg.StartRow
	if start < 1 {
		start = 1
	}

	var topics []kb.Topic
	index := make(map[string]int)
	for i := start - 1; i < len(rows); i++ {
		row := rows[i]
		topic := strings.TrimSpace(cell(row, topicCol))
		question := strings.TrimSpace(cell(row, questionCol))
		if topic == "" || question == "" {
			continue
		}
		pos, ok := index[topic]
		if !ok {
			pos = len(topics)
			index[topic] = pos
			topics = append(topics, kb.Topic{Name: topic})
		}
		topics[pos].Questions = append(topics[pos].Questions, question)
	}
	return kb.New(topics)
}

func columnIndex(col string) (int, error) {
	n, err := excelize.ColumnNameToNumber(strings.TrimSpace(col))
	if err != nil {
		return 0, fmt.Errorf("invalid column %q: %w", col, err)
	}
	return n - 1, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
