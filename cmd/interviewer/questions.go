package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/snow-ghost/interviewer/embeddings"
	"github.com/snow-ghost/interviewer/kb"
	kbfs "github.com/snow-ghost/interviewer/kb/fs"
	"github.com/snow-ghost/interviewer/kb/indexer"
	"github.com/snow-ghost/interviewer/pkg/logging"
	"github.com/snow-ghost/interviewer/vectordb"
)

var (
	questionsTopic string
	exportOut      string
	searchTop      int
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Inspect the question bank",
}

var questionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List topics, or the questions of one topic",
	RunE: func(cmd *cobra.Command, _ []string) error {
		bank, err := loadBank()
		if err != nil {
			return err
		}
		if questionsTopic == "" {
			for _, t := range bank.Topics() {
				fmt.Printf("%-45s %3d\n", t, len(bank.Questions(t)))
			}
			fmt.Printf("%d questions in %d topics\n", bank.Len(), len(bank.Topics()))
			return nil
		}
		if !bank.HasTopic(questionsTopic) {
			return fmt.Errorf("unknown topic %q", questionsTopic)
		}
		for i, q := range bank.Questions(questionsTopic) {
			fmt.Printf("%3d. %s\n", i+1, q)
		}
		return nil
	},
}

var questionsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the configured bank as YAML, for example to convert a spreadsheet",
	RunE: func(cmd *cobra.Command, _ []string) error {
		bank, err := loadBank()
		if err != nil {
			return err
		}
		data, err := kbfs.MarshalYAML(bank)
		if err != nil {
			return err
		}
		if exportOut == "" || exportOut == "-" {
			_, err = os.Stdout.Write(data)
			return err
		}
		return os.WriteFile(exportOut, data, 0o644)
	},
}

var questionsSearchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Rank bank questions against free text with the configured embeddings",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		bank, err := cfg.LoadBank()
		if err != nil {
			return err
		}
		logger, err := logging.New(cfg.Log)
		if err != nil {
			return err
		}
		defer logger.Sync()

		embedder, err := embeddings.New(cfg.Embeddings, logger)
		if err != nil {
			return err
		}
		idx := indexer.NewIndexer(embedder, vectordb.NewMemoryVectorStore(cfg.Relevance.Vectors), logger)

		ctx := context.Background()
		stats, err := idx.IndexBank(ctx, bank)
		if err != nil {
			return err
		}
		matches, err := idx.Search(ctx, strings.Join(args, " "), searchTop)
		if err != nil {
			return err
		}
		fmt.Printf("Indexed %d questions (%d failed)\n\n", stats.Indexed, stats.Failed)
		for i, m := range matches {
			fmt.Printf("%2d. %.3f  [%s] %s\n", i+1, m.Score, m.Topic, m.Question)
		}
		return nil
	},
}

func init() {
	questionsListCmd.Flags().StringVarP(&questionsTopic, "topic", "t", "", "topic to list questions for")
	questionsExportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default: stdout)")
	questionsSearchCmd.Flags().IntVarP(&searchTop, "top", "k", 5, "number of matches to show")

	questionsCmd.AddCommand(questionsListCmd, questionsExportCmd, questionsSearchCmd)
	rootCmd.AddCommand(questionsCmd)
}

func loadBank() (*kb.Bank, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return cfg.LoadBank()
}
