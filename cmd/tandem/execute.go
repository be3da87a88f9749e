package main

import (
	"github.com/spf13/cobra"
)

func executeCmd() *cobra.Command {
	var userPrompt string
	var completionJSON string
	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Run the packaged workflow locally and print the response envelope",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := resolveRequest(userPrompt, completionJSON)
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			runner, cleanup, err := buildRunner(ctx, cfg)
			if err != nil {
				cleanup()
				return err
			}
			defer cleanup()

			return printResponse(runner.Execute(ctx, req))
		},
	}
	cmd.Flags().StringVar(&userPrompt, "user_prompt", "", "prompt text, or a JSON object of structured inputs")
	cmd.Flags().StringVar(&completionJSON, "completion_json", "", "path to a chat-completion request JSON file")
	return cmd
}
