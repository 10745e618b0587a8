package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"inkwell/pkg/richtext"
)

var errInvalidDocument = errors.New("document is invalid")

func newDocCmd() *cobra.Command {
	doc := &cobra.Command{
		Use:   "doc",
		Short: "Normalize, validate, outline and render rich-text documents",
	}
	doc.AddCommand(
		newDocNormalizeCmd(),
		newDocValidateCmd(),
		newDocTocCmd(),
		newDocRenderCmd(),
		newDocStatsCmd(),
	)
	return doc
}

func newDocNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize [file|-]",
		Short: "Print the normalized form of a document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), richtext.NormalizeJSON(raw))
		},
	}
}

func newDocValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file|-]",
		Short: "Check a document against the schema",
		Long: `Validate reports every violation with its path, one per line, and exits
non-zero when the document is invalid.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			if _, err := richtext.ValidateJSON(raw); err != nil {
				var verr *richtext.ValidationError
				if !errors.As(err, &verr) {
					return err
				}
				out := cmd.ErrOrStderr()
				for _, path := range verr.Paths() {
					name := path
					if name == "" {
						name = "(root)"
					}
					fmt.Fprintf(out, "%s: %s\n", name, strings.Join(verr.Fields[path], ", "))
				}
				return errInvalidDocument
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func newDocTocCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "toc [file|-]",
		Short: "Print the heading outline of a document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			outline := richtext.Outline(richtext.NormalizeJSON(raw))
			switch format {
			case "json":
				return writeJSON(cmd.OutOrStdout(), outline)
			case "yaml":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(outline); err != nil {
					return err
				}
				return enc.Close()
			default:
				return fmt.Errorf("unknown format %q (want json or yaml)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or yaml")
	return cmd
}

func newDocRenderCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Render a document as HTML or Markdown",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			doc := richtext.NormalizeJSON(raw)
			var out string
			switch format {
			case "html":
				out, err = richtext.RenderHTML(doc)
			case "markdown", "md":
				out, err = richtext.RenderMarkdown(doc)
			default:
				return fmt.Errorf("unknown format %q (want html or markdown)", format)
			}
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "html", "Output format: html or markdown")
	return cmd
}

func newDocStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats [file|-]",
		Short: "Print word, character and heading counts with reading time",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			s := richtext.ComputeStats(richtext.NormalizeJSON(raw))
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "size:         %s\n", humanize.Bytes(uint64(len(raw))))
			fmt.Fprintf(out, "words:        %s\n", humanize.Comma(int64(s.Words)))
			fmt.Fprintf(out, "characters:   %s\n", humanize.Comma(int64(s.Characters)))
			fmt.Fprintf(out, "headings:     %d\n", s.Headings)
			fmt.Fprintf(out, "images:       %d\n", s.Images)
			fmt.Fprintf(out, "reading time: %s\n", readingTime(s.ReadingMinutes()))
			return nil
		},
	}
}

func readingTime(minutes int) string {
	if minutes == 0 {
		return "none"
	}
	return fmt.Sprintf("%d %s", minutes, english.PluralWord(minutes, "minute", ""))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
