package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/snow-ghost/interviewer/core"
	"github.com/snow-ghost/interviewer/evaluation"
	"github.com/snow-ghost/interviewer/pkg/app"
	"github.com/snow-ghost/interviewer/pkg/profiles"
	"github.com/snow-ghost/interviewer/transport/tui"
)

var chatProfile string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Take an interview in the terminal",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext()
		defer stop()

		a, err := buildApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		profile, err := chooseProfile(a, chatProfile)
		if err != nil {
			return err
		}

		start, err := a.Service.Start(ctx, profile)
		if err != nil {
			return err
		}

		final, err := tea.NewProgram(tui.New(ctx, a.Service, core.FirstName(profile.Name), start)).Run()
		if err != nil {
			return fmt.Errorf("chat: %w", err)
		}
		if m, ok := final.(tui.Model); !ok || !m.Done() {
			fmt.Printf("Interview left unfinished. Session: %s\n", start.SessionID)
			return nil
		}

		fmt.Println("Evaluating your interview...")
		evalCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
		report, err := a.Runner.Run(evalCtx, start.SessionID)
		if err != nil {
			return fmt.Errorf("evaluation: %w", err)
		}
		fmt.Println(evaluation.Summary(report))
		return nil
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatProfile, "profile", "p", "", "profile name from profiles.dir or a path to a profile YAML file")
	rootCmd.AddCommand(chatCmd)
}

// chooseProfile resolves ref as a file, then as a configured profile name,
// and prompts when ref is empty.
func chooseProfile(a *app.App, ref string) (core.CandidateProfile, error) {
	if ref != "" && (strings.HasSuffix(ref, ".yaml") || strings.HasSuffix(ref, ".yml")) {
		if _, err := os.Stat(ref); err == nil {
			return profiles.Load(ref)
		}
	}

	set, err := a.Config.LoadProfiles()
	if err != nil {
		return core.CandidateProfile{}, err
	}
	if ref != "" {
		p, ok := set[ref]
		if !ok {
			return core.CandidateProfile{}, fmt.Errorf("no profile named %q in %s", ref, a.Config.Profiles.Dir)
		}
		return p, nil
	}

	names := profiles.Names(set)
	if len(names) == 0 {
		return core.CandidateProfile{}, errors.New("no candidate profiles found, set profiles.dir or pass --profile")
	}
	prompt := promptui.Select{
		Label: "Choose a candidate profile",
		Items: names,
	}
	_, name, err := prompt.Run()
	if err != nil {
		return core.CandidateProfile{}, err
	}
	return set[name], nil
}
