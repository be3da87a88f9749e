package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func runsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent invocations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, closeStore, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			items, err := st.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Println("no invocations recorded")
				return nil
			}
			for _, inv := range items {
				fmt.Printf("%s  %s  %-7s  %-8s  %4dms  %s\n",
					inv.ID, inv.CreatedAt, inv.Status, inv.Adapter, inv.LatencyMS, truncate(inv.Prompt, 48))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum invocations to list")
	cmd.AddCommand(runsShowCmd())
	return cmd
}

func runsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one recorded invocation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, closeStore, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			inv, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("id:       %s\n", inv.ID)
			fmt.Printf("created:  %s\n", inv.CreatedAt)
			fmt.Printf("adapter:  %s\n", inv.Adapter)
			fmt.Printf("status:   %s\n", inv.Status)
			fmt.Printf("latency:  %dms\n", inv.LatencyMS)
			fmt.Printf("tokens:   %d prompt, %d completion, %d total\n",
				inv.Usage.PromptTokens, inv.Usage.CompletionTokens, inv.Usage.TotalTokens)
			fmt.Printf("prompt:   %s\n", inv.Prompt)
			if inv.Error != "" {
				fmt.Printf("error:    %s\n", inv.Error)
			}
			if inv.Content != "" {
				fmt.Printf("content:\n%s\n", inv.Content)
			}
			return nil
		},
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
