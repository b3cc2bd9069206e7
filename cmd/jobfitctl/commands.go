package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"jobfit-backend/internal/extract"
	"jobfit-backend/internal/skills"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "jobfitctl",
		Short: "Resume parsing and job matching tools",
		Long: `jobfitctl runs the same extraction and keyword matching as the API
against local PDF, DOC and DOCX files. No database or network access is needed.`,
		SilenceUsage: true,
	}
	root.AddCommand(newExtractCmd(), newSkillsCmd(), newMatchCmd())
	return root
}

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file>",
		Short: "Print the text extracted from a resume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := extractFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
}

func newSkillsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "skills <file>",
		Short: "List the known skills detected in a resume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := extractFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, s := range skills.Extract(text) {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), s); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

type matchReport struct {
	File             string   `json:"file"`
	MatchPercentage  float64  `json:"matchPercentage"`
	MatchedSkills    []string `json:"matchedSkills"`
	MissingSkills    []string `json:"missingSkills"`
	SkillSuggestions []string `json:"skillSuggestions"`
}

func newMatchCmd() *cobra.Command {
	var (
		required   []string
		experience int
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "match <file>",
		Short: "Score a resume against a list of required skills",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(skills.Normalize(required)) == 0 {
				return fmt.Errorf("--skills must name at least one skill")
			}
			text, err := extractFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			res := skills.Match(skills.Extract(text), required)
			var minExp *int
			if experience > 0 {
				minExp = &experience
			}
			report := matchReport{
				File:             filepath.Base(args[0]),
				MatchPercentage:  res.MatchPercentage,
				MatchedSkills:    res.MatchedSkills,
				MissingSkills:    res.MissingSkills,
				SkillSuggestions: skills.Suggestions(res.MissingSkills, minExp),
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			return writeReport(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().StringSliceVar(&required, "skills", nil, "comma separated required skills")
	cmd.Flags().IntVar(&experience, "min-experience", 0, "minimum years of experience")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	_ = cmd.MarkFlagRequired("skills")
	return cmd
}

func writeReport(w io.Writer, r matchReport) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Match:   %.2f%%\n", r.MatchPercentage)
	fmt.Fprintf(&b, "Matched: %s\n", joinOrNone(r.MatchedSkills))
	fmt.Fprintf(&b, "Missing: %s\n", joinOrNone(r.MissingSkills))
	for _, s := range r.SkillSuggestions {
		fmt.Fprintf(&b, "  - %s\n", s)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func joinOrNone(list []string) string {
	if len(list) == 0 {
		return "(none)"
	}
	return strings.Join(list, ", ")
}

func extractFile(ctx context.Context, path string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	name := filepath.Base(path)
	mime := extract.NormalizeMimeType("", name, data)
	text, err := extract.ExtractTextFromBytes(ctx, data, mime, name)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", name, err)
	}
	return text, nil
}
