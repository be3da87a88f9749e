package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tandemkit/tandem/internal/infra"
)

func infraCmd() *cobra.Command {
	var descriptorPath string
	cmd := &cobra.Command{
		Use:   "infra",
		Short: "Work with the deployment descriptor",
	}
	cmd.PersistentFlags().StringVar(&descriptorPath, "descriptor", "tandem.yaml", "deployment descriptor path")

	plan := &cobra.Command{
		Use:   "plan",
		Short: "Print the resolved resource plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			desc, err := infra.Load(descriptorPath)
			if err != nil {
				return err
			}

			root := desc.Path
			if root == "" {
				root = filepath.Dir(descriptorPath)
			}
			files, err := infra.CollectFiles(root)
			if err != nil {
				return err
			}
			fmt.Print(desc.Plan(cfg, files))
			return nil
		},
	}

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Validate the deployment descriptor",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := infra.Load(descriptorPath); err != nil {
				return err
			}
			fmt.Printf("%s is valid\n", descriptorPath)
			return nil
		},
	}

	cmd.AddCommand(plan)
	cmd.AddCommand(validate)
	return cmd
}
