package cmd

import (
	"encoding/json"
	"fmt"

	statusadapter "github.com/bnema/inline-edit/internal/adapters/render/status"
	"github.com/bnema/inline-edit/internal/application"
	"github.com/bnema/inline-edit/internal/domain"
	"github.com/spf13/cobra"
)

func newDocCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doc",
		Short: "Manage documents",
	}

	cmd.AddCommand(
		newDocListCmd(app),
		newDocCreateCmd(app),
		newDocShowCmd(app),
		newDocWriteCmd(app),
		newDocReplaceCmd(app),
		newDocAssistCmd(app),
	)

	return cmd
}

func newDocListCmd(app *app) *cobra.Command {
	var asJSON bool
	var width int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			summaries, err := app.service.List(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summaries)
			}

			rendered, err := app.statusRenderer(summaries, statusadapter.RenderOptions{
				Now:   app.now(),
				Width: width,
			})
			if err != nil {
				return fmt.Errorf("render documents: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print documents as JSON")
	cmd.Flags().IntVar(&width, "width", 0, "wrap width for titles (0 disables truncation)")
	return cmd
}

func newDocCreateCmd(app *app) *cobra.Command {
	var id, title, kind, body string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsedKind, err := domain.ParseContentKind(kind)
			if err != nil {
				return err
			}

			document, err := app.service.Create(cmd.Context(), application.CreateDocumentCommand{
				ID:    domain.DocumentID(id),
				Title: title,
				Kind:  parsedKind,
				Body:  body,
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", document.ID)
			return err
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "document id (derived from the title when empty)")
	cmd.Flags().StringVar(&title, "title", "", "document title")
	cmd.Flags().StringVar(&kind, "kind", string(domain.ContentKindRichText), "content kind: richtext, table, chart or metric")
	cmd.Flags().StringVar(&body, "body", "", "initial body")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newDocShowCmd(app *app) *cobra.Command {
	var render bool
	var width int

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a document body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			document, err := app.service.Get(cmd.Context(), domain.DocumentID(args[0]))
			if err != nil {
				return err
			}

			if !render {
				_, err = fmt.Fprint(cmd.OutOrStdout(), document.Body)
				return err
			}

			renderer, err := app.markdownRenderer(width)
			if err != nil {
				return err
			}
			rendered, err := renderer.Render(document)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&render, "render", false, "render the document as styled markdown")
	cmd.Flags().IntVar(&width, "width", 80, "wrap width when rendering")
	return cmd
}

func newDocWriteCmd(app *app) *cobra.Command {
	var content string

	cmd := &cobra.Command{
		Use:   "write <id>",
		Short: "Replace a document body through an edit session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			document, err := app.service.Write(cmd.Context(), application.WriteDocumentCommand{
				ID:   domain.DocumentID(args[0]),
				Body: content,
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "saved %s (rev %d)\n", document.ID, document.Revision)
			return err
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "new document body")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}

func newDocReplaceCmd(app *app) *cobra.Command {
	var find, with string

	cmd := &cobra.Command{
		Use:   "replace <id>",
		Short: "Replace the first occurrence of text in a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.service.ReplaceText(cmd.Context(), application.ReplaceTextCommand{
				ID:   domain.DocumentID(args[0]),
				Find: find,
				With: with,
			})
			if err != nil {
				return err
			}

			return writeOutcome(cmd, args[0], result)
		},
	}

	cmd.Flags().StringVar(&find, "find", "", "text to replace")
	cmd.Flags().StringVar(&with, "with", "", "replacement text")
	_ = cmd.MarkFlagRequired("find")
	_ = cmd.MarkFlagRequired("with")
	return cmd
}

func newDocAssistCmd(app *app) *cobra.Command {
	var find, command string

	cmd := &cobra.Command{
		Use:   "assist <id>",
		Short: "Rewrite text in a document with the assist command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shell := command
			if shell == "" {
				shell = app.config.AssistCommand
			}
			transformer, err := app.newTransformer(shell)
			if err != nil {
				return fmt.Errorf("assist: %w", err)
			}

			var result application.SelectionResult
			assist := func() error {
				var err error
				result, err = app.service.AssistText(cmd.Context(), application.AssistTextCommand{
					ID:   domain.DocumentID(args[0]),
					Find: find,
				}, transformer)
				return err
			}
			if err := runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Running assist command...", assist); err != nil {
				return err
			}

			return writeOutcome(cmd, args[0], result)
		},
	}

	cmd.Flags().StringVar(&find, "find", "", "text to rewrite")
	cmd.Flags().StringVar(&command, "command", "", "shell command receiving the text on stdin (default assist.command)")
	_ = cmd.MarkFlagRequired("find")
	return cmd
}

func writeOutcome(cmd *cobra.Command, id string, result application.SelectionResult) error {
	out := cmd.OutOrStdout()
	switch result.Outcome {
	case domain.SelectionApplied:
		_, err := fmt.Fprintf(out, "%s: replaced\n", id)
		return err
	case domain.SelectionFallback:
		_, err := fmt.Fprintf(out, "%s: replaced first match (selection moved)\n", id)
		return err
	default:
		_, err := fmt.Fprintf(out, "%s: nothing replaced\n", id)
		return err
	}
}
