package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"ragdemo/internal/config"
)

func newConfigCmd(opts *options) *cobra.Command {
	var write string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration or write it to a file",
		Long: `Print the effective configuration or write it to a file.

Secrets never live in the file. The session cookie sent to the hosted model is
read from the env var named by answer.cookie_env (default RAGDEMO_COOKIE) and the
Cookie header is only sent when that variable is set. OpenAI keys are read from
the env vars named by embedder.openai.api_key_env and answer.openai.api_key_env
(default OPENAI_API_KEY). Both may also come from a .env file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if write != "" {
				if err := config.Save(write, opts.cfg); err != nil {
					return fmt.Errorf("write config: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", write)
				return nil
			}
			data, err := yaml.Marshal(opts.cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.cfgPath != "" {
				fmt.Fprintf(out, "# loaded from %s\n", opts.cfgPath)
			}
			fmt.Fprintf(out, "# session cookie: $%s is %s\n", opts.cfg.Answer.CookieEnv, cookieState(opts.cfg.Answer))
			_, err = out.Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&write, "write", "", "write the effective config to this path")
	return cmd
}

func cookieState(a config.AnswerConfig) string {
	if a.Cookie() == "" {
		return "unset, no Cookie header is sent"
	}
	return "set"
}
