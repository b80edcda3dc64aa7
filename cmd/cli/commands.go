package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/glossa/glossa/internal/core"
	"github.com/glossa/glossa/internal/db"
)

var (
	labelColor = color.New(color.Bold)
	valueColor = color.New(color.FgGreen)
	mutedColor = color.New(color.Faint)
)

func newTranslateCommand() *cobra.Command {
	var from, to string

	command := &cobra.Command{
		Use:   "translate <text>...",
		Short: "Translate text into another language",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(to) == "" {
				return fmt.Errorf("--to is required")
			}

			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := app.processor.Translate(cmd.Context(), core.TranslationRequest{
				Text:           strings.Join(args, " "),
				SourceLanguage: from,
				TargetLanguage: to,
			})
			if err != nil {
				return fmt.Errorf("translate: %w", err)
			}

			valueColor.Fprintln(cmd.OutOrStdout(), result.TranslatedText)
			return nil
		},
	}
	command.Flags().StringVar(&from, "from", core.AutoDetect, "source language code, or auto")
	command.Flags().StringVar(&to, "to", "", "target language code")
	return command
}

func newDetectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "detect <text>...",
		Short: "Detect the language of a text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			code, err := app.processor.DetectLanguage(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("detect language: %w", err)
			}

			labelColor.Fprint(cmd.OutOrStdout(), "Detected: ")
			valueColor.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", code, core.LanguageName(code))
			return nil
		},
	}
}

func newDefineCommand() *cobra.Command {
	var language string

	command := &cobra.Command{
		Use:   "define <word>",
		Short: "Look up a word, using the local dictionary first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			entry, err := app.processor.LookupWord(cmd.Context(), args[0], language)
			if err != nil {
				return fmt.Errorf("look up %q: %w", args[0], err)
			}

			printEntry(cmd.OutOrStdout(), entry)
			return nil
		},
	}
	command.Flags().StringVar(&language, "lang", "en", "language of the word")
	return command
}

func newHistoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the most recent dictionary lookups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			entries, err := app.processor.History(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				mutedColor.Fprintln(out, "No dictionary entries yet.")
				return nil
			}
			for i, entry := range entries {
				labelColor.Fprintf(out, "%2d. %s", i+1, entry.Word)
				mutedColor.Fprintf(out, " (%s) %s\n", entry.Language, entry.CreatedAt.Local().Format("2006-01-02 15:04"))
				fmt.Fprintf(out, "    %s\n", entry.Definition)
			}
			return nil
		},
	}
}

func newExportCommand() *cobra.Command {
	var format, output string

	command := &cobra.Command{
		Use:   "export",
		Short: "Export every stored dictionary entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exportFormat, err := core.ParseExportFormat(format)
			if err != nil {
				return err
			}

			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if output == "" || output == "-" {
				return app.processor.ExportEntries(cmd.Context(), cmd.OutOrStdout(), exportFormat)
			}

			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			if err := app.processor.ExportEntries(cmd.Context(), file, exportFormat); err != nil {
				_ = file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return fmt.Errorf("failed to close export file: %w", err)
			}

			valueColor.Fprintf(cmd.ErrOrStderr(), "Exported dictionary to %s\n", output)
			return nil
		},
	}
	command.Flags().StringVar(&format, "format", string(core.ExportJSON), "export format (json or yaml)")
	command.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return command
}

func printEntry(out io.Writer, entry *db.DictionaryEntry) {
	labelColor.Fprint(out, entry.Word)
	if entry.PartOfSpeech != "" {
		mutedColor.Fprintf(out, " (%s)", entry.PartOfSpeech)
	}
	fmt.Fprintf(out, " [%s]\n", entry.Language)
	valueColor.Fprintln(out, entry.Definition)
	if entry.Examples != "" {
		mutedColor.Fprintln(out, "Examples: "+entry.Examples)
	}
}
