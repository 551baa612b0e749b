package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/snow-ghost/interviewer/core"
	"github.com/snow-ghost/interviewer/evaluation"
	"github.com/snow-ghost/interviewer/testkit"
)

var (
	simProfile string
	simScript  string
	simJSON    bool
	simNoEval  bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a complete interview with scripted candidate answers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext()
		defer stop()

		a, err := buildApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		profile := testkit.Candidate()
		if simProfile != "" {
			if profile, err = chooseProfile(a, simProfile); err != nil {
				return err
			}
		}
		script, err := loadScript(simScript)
		if err != nil {
			return err
		}

		runner := testkit.NewRunner()
		if !simJSON {
			runner.OnExchange = func(e testkit.Exchange) {
				fmt.Printf("[%s] Candidate: %s\n", e.Phase, e.Candidate)
				fmt.Printf("[%s] Interviewer: %s\n\n", e.Phase, e.Interviewer)
			}
		}

		res, err := runner.Run(ctx, a.Service, profile, script)
		if err != nil {
			return err
		}

		var report *core.EvaluationReport
		if !simNoEval {
			evalCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			defer cancel()
			r, err := a.Runner.Run(evalCtx, res.SessionID)
			if err != nil {
				return fmt.Errorf("evaluation: %w", err)
			}
			report = &r
		}

		if simJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Run    testkit.Result         `json:"run"`
				Report *core.EvaluationReport `json:"report,omitempty"`
			}{res, report})
		}

		fmt.Printf("Session %s: %v turns, %v questions asked\n",
			res.SessionID, res.Metrics["turns_total"], res.Metrics["questions_asked"])
		if report != nil {
			fmt.Println(evaluation.Summary(*report))
		}
		return nil
	},
}

func init() {
	simulateCmd.Flags().StringVarP(&simProfile, "profile", "p", "", "profile name or YAML file (default: built-in candidate)")
	simulateCmd.Flags().StringVarP(&simScript, "script", "s", "", "YAML file with candidate answers per phase")
	simulateCmd.Flags().BoolVar(&simJSON, "json", false, "print the run and report as JSON")
	simulateCmd.Flags().BoolVar(&simNoEval, "no-eval", false, "skip the evaluation")
	rootCmd.AddCommand(simulateCmd)
}

func loadScript(path string) (testkit.Script, error) {
	if path == "" {
		return testkit.DefaultScript(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return testkit.Script{}, fmt.Errorf("read script: %w", err)
	}
	script := testkit.DefaultScript()
	if err := yaml.Unmarshal(data, &script); err != nil {
		return testkit.Script{}, fmt.Errorf("parse script: %w", err)
	}
	return script, nil
}
