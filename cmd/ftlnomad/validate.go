package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ftlnomad/internal/content"
	"ftlnomad/internal/validate"
)

func validateCmd() *cobra.Command {
	var kinds []string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the content tree for consistency problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, kinds)
		},
	}
	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "Limit the check to these kinds")
	return cmd
}

func runValidate(cmd *cobra.Command, kindNames []string) error {
	var kinds []content.Kind
	for _, name := range kindNames {
		kind, err := content.ParseKind(name)
		if err != nil {
			return err
		}
		kinds = append(kinds, kind)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	lib, err := openLibrary(cfg)
	if err != nil {
		return err
	}

	report, err := validate.Run(cmd.Context(), lib, validate.Options{Kinds: kinds})
	if err != nil {
		return err
	}
	if printReport(cmd.OutOrStdout(), report) {
		return fmt.Errorf("validation found errors")
	}
	return nil
}

// printReport writes errors then warnings and reports whether any error was
// found.
func printReport(out io.Writer, report *validate.Report) bool {
	var errorIssues []validate.Issue
	var warnIssues []validate.Issue
	for _, issue := range report.Issues {
		switch issue.Severity {
		case validate.SeverityError:
			errorIssues = append(errorIssues, issue)
		case validate.SeverityWarn:
			warnIssues = append(warnIssues, issue)
		}
	}

	if len(errorIssues) == 0 && len(warnIssues) == 0 {
		fmt.Fprintln(out, color.GreenString("No issues found."))
		return false
	}

	if len(errorIssues) > 0 {
		fmt.Fprintln(out, color.New(color.FgRed, color.Bold).Sprintf("Errors (%d):", len(errorIssues)))
		printIssues(out, errorIssues, color.New(color.FgRed))
	}
	if len(warnIssues) > 0 {
		if len(errorIssues) > 0 {
			fmt.Fprintln(out, "")
		}
		fmt.Fprintln(out, color.New(color.FgYellow, color.Bold).Sprintf("Warnings (%d):", len(warnIssues)))
		printIssues(out, warnIssues, color.New(color.FgYellow))
	}
	return len(errorIssues) > 0
}

func printIssues(out io.Writer, issues []validate.Issue, marker *color.Color) {
	for _, issue := range issues {
		location := string(issue.Kind)
		if issue.Slug != "" {
			location = fmt.Sprintf("%s/%s", issue.Kind, issue.Slug)
		}
		if issue.FilePath != "" {
			location = fmt.Sprintf("%s (%s)", location, issue.FilePath)
		}
		fmt.Fprintf(out, "  %s %s: %s (%s)\n", marker.Sprint("-"), location, issue.Message, issue.Code)
	}
}
