package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tandemkit/tandem/internal/envelope"
	"github.com/tandemkit/tandem/internal/remote"
)

func executeDeploymentCmd() *cobra.Command {
	var userPrompt string
	var completionJSON string
	var deploymentID string
	cmd := &cobra.Command{
		Use:   "execute-deployment",
		Short: "Query an agent already deployed on the platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			if deploymentID == "" {
				return fmt.Errorf("--deployment_id is required")
			}

			var comp envelope.CompletionRequest
			if completionJSON != "" {
				loaded, err := envelope.LoadCompletionFile(completionJSON)
				if err != nil {
					return err
				}
				comp = loaded
			} else if userPrompt != "" {
				comp = envelope.NewCompletionRequest(userPrompt, nil)
			} else {
				return fmt.Errorf("either --user_prompt or --completion_json is required")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := remote.NewClient(cfg, deploymentID, nil)
			if err != nil {
				return err
			}

			resp, err := client.Execute(cmd.Context(), comp)
			if err != nil {
				resp = envelope.Failure(err.Error())
				resp.Adapter = "deployment"
			}
			return printResponse(resp)
		},
	}
	cmd.Flags().StringVar(&userPrompt, "user_prompt", "", "prompt text")
	cmd.Flags().StringVar(&completionJSON, "completion_json", "", "path to a chat-completion request JSON file")
	cmd.Flags().StringVar(&deploymentID, "deployment_id", "", "deployment to query")
	return cmd
}
