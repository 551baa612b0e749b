package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/snow-ghost/interviewer/kb"
)

const sampleYAML = `
topics:
  - name: Computer Vision
    questions:
      - What are RCNNs?
      - What is the role of zero padding?
  - name: Ensemble Methods
    questions:
      - What's the difference between boosting and bagging?
`

func TestLoadYAML(t *testing.T) {
	b, err := LoadYAML([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"Computer Vision", "Ensemble Methods"}, b.Topics())
	assert.Equal(t, 3, b.Len())
	topic, ok := b.FindTopic("What are RCNNs?")
	require.True(t, ok)
	assert.Equal(t, "Computer Vision", topic)
}

func TestLoadYAMLRejectsEmptyBank(t *testing.T) {
	_, err := LoadYAML([]byte("topics: []"))
	assert.Error(t, err)

	_, err = LoadYAML([]byte("topics: [:"))
	assert.Error(t, err)
}

func TestMarshalYAMLRoundTrip(t *testing.T) {
	data, err := MarshalYAML(kb.Default())
	require.NoError(t, err)

	b, err := LoadYAML(data)
	require.NoError(t, err)
	assert.Equal(t, kb.Default().Entries(), b.Entries())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bank.yaml")
		require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))
		b, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 3, b.Len())
	})

	t.Run("xlsx", func(t *testing.T) {
		path := filepath.Join(dir, "bank.xlsx")
		f := excelize.NewFile()
		sheet := f.GetSheetName(0)
		rows := [][]string{
			{"Topic", "Question"},
			{"Miscellaneous", "What is Turing test?"},
			{"Computer Vision", "What are RCNNs?"},
			{"", "orphan question"},
			{"Miscellaneous", "How does rand() work?"},
		}
		for i, r := range rows {
			for j, v := range r {
				name, err := excelize.CoordinatesToCellName(j+1, i+1)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(sheet, name, v))
			}
		}
		require.NoError(t, f.SaveAs(path))
		require.NoError(t, f.Close())

		b, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"Miscellaneous", "Computer Vision"}, b.Topics())
		assert.Equal(t, []string{"What is Turing test?", "How does rand() work?"}, b.Questions("Miscellaneous"))
		assert.Equal(t, 3, b.Len())
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "bank.csv"))
		assert.Error(t, err)
	})
}
