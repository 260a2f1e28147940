package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bymeisam/use/internal/commitlint"
	"github.com/bymeisam/use/internal/config"
	uerrors "github.com/bymeisam/use/internal/errors"
)

func commitlintCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "commitlint [file]",
		Short: "Validate a commit message",
		Long: `Validate a commit message against the Conventional Commits form.

The message is read from a file, or from stdin when the file is "-" or
omitted. Merge, revert, and fixup commits pass unchecked.

Designed to run as a commit-msg hook:

  use commitlint "$1"

Rules (allowed types, header length, scopes) come from the lint section
of use.json when one is found.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := "-"
			if len(args) > 0 {
				file = args[0]
			}
			return runCommitlint(file, jsonOut)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print problems as JSON")

	return cmd
}

func runCommitlint(file string, jsonOut bool) error {
	message, path, err := readMessage(file)
	if err != nil {
		return err
	}

	rules, err := lintRules()
	if err != nil {
		return err
	}

	report := commitlint.New(rules).Lint(message)

	if report.Skipped {
		info("merge or fixup commit, skipping")
		return nil
	}

	if jsonOut {
		return printProblemsJSON(report, path)
	}

	for _, p := range report.Errors() {
		ue := uerrors.New(p.Code).WithDetail(p.Message)
		if path != "" {
			ue = ue.WithLocation(path, p.Line, p.Column)
		}
		fmt.Fprintln(os.Stderr, ue.Format())
	}
	for _, w := range report.Warnings() {
		warn("%s (%s)", w.Message, w.Code)
	}

	if !report.OK() {
		errorMsg("commit message rejected")
		return fmt.Errorf("%d problem(s) found", len(report.Errors()))
	}

	success("commit message is valid")
	return nil
}

// readMessage returns the message text and, for real files, the path used
// to point problems at their source.
func readMessage(file string) (message, path string, err error) {
	if file == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", err
		}
		return string(data), "", nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return "", "", err
	}
	return string(data), file, nil
}

// lintRules loads lint settings from use.json. A missing config file means
// default rules; a broken one is an error.
func lintRules() (commitlint.Config, error) {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		var ue *uerrors.UseError
		if errors.As(err, &ue) && ue.Code == "C001" {
			return commitlint.DefaultConfig(), nil
		}
		return commitlint.Config{}, err
	}

	return commitlint.Config{
		Types:           cfg.Lint.Types,
		MaxHeaderLength: cfg.Lint.MaxHeaderLength,
		RequireScope:    cfg.Lint.RequireScope,
		Scopes:          cfg.Lint.Scopes,
	}, nil
}

func printProblemsJSON(report *commitlint.Report, path string) error {
	type jsonProblem struct {
		Code     string `json:"code"`
		Severity string `json:"severity"`
		File     string `json:"file,omitempty"`
		Line     int    `json:"line"`
		Column   int    `json:"column"`
		Message  string `json:"message"`
	}

	items := make([]jsonProblem, 0, len(report.Problems))
	for _, p := range report.Problems {
		items = append(items, jsonProblem{
			Code:     p.Code,
			Severity: string(p.Severity),
			File:     path,
			Line:     p.Line,
			Column:   p.Column,
			Message:  p.Message,
		})
	}

	out, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if !report.OK() {
		return fmt.Errorf("%d problem(s) found", len(report.Errors()))
	}
	return nil
}
