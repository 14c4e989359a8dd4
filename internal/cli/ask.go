package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"ragdemo/internal/domain"
	"ragdemo/internal/logger"
	"ragdemo/internal/service"
)

func newAskCmd(opts *options) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the model a question, with or without retrieved context",
		Long: `Ask the model a question.

Modes:
  rag      retrieve context from the knowledge base and include it in the prompt
  direct   send the question as-is
  compare  run both and print them one after the other

Example:
  ragdemo ask "What is deep learning?" --mode compare --load docs/ml.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.ForTUI(opts.cfg.Logging)
			if err != nil {
				return err
			}
			a, err := newApp(opts.cfg, log)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := a.preload(ctx, cmd.ErrOrStderr(), opts.load); err != nil {
				return err
			}

			question := strings.Join(args, " ")
			userID := opts.cfg.Answer.UserID
			out := cmd.OutOrStdout()
			switch mode {
			case "rag":
				ans, err := a.svc.AnswerWithRAG(ctx, question, userID)
				if errors.Is(err, domain.ErrNoContext) {
					fmt.Fprintln(out, "No relevant documents found in the knowledge base!")
					return nil
				}
				if err != nil {
					return err
				}
				printRAG(out, ans)
			case "direct":
				res, err := a.svc.AnswerDirect(ctx, question, userID)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, "Direct LLM Response:")
				fmt.Fprintln(out, res.String())
			case "compare":
				cmp, err := a.svc.Compare(ctx, question, userID)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, "=== RAG Response ===")
				if cmp.RAGErr != nil {
					fmt.Fprintln(out, "No context found for RAG")
				} else {
					printRAG(out, cmp.RAG)
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, "=== Direct LLM Response ===")
				fmt.Fprintln(out, cmp.Direct.String())
			default:
				return fmt.Errorf("unknown mode %q (want rag, direct or compare)", mode)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "rag", "answer mode: rag, direct or compare")
	return cmd
}

func printRAG(out io.Writer, ans service.RAGAnswer) {
	fmt.Fprintln(out, "Retrieved Context:")
	for i, c := range ans.Contexts {
		fmt.Fprintf(out, "  Document %d (%s): %s\n", i+1, c.Document.Metadata.Title(), c.Document.Text)
	}
	fmt.Fprintln(out, "RAG Response:")
	fmt.Fprintln(out, ans.Answer.String())
}
