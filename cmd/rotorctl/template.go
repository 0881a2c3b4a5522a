package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rotorlabs/rotorctl/internal/config"
)

var (
	templateKind   string
	templateOutput string
	templateForce  bool
)

func newTemplateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write a starter config or declarations file",
		RunE:  runTemplate,
	}
	cmd.Flags().StringVar(&templateKind, "kind", "config", "template kind (config or declarations)")
	cmd.Flags().StringVar(&templateOutput, "output", "", "output path (defaults to a per-kind path)")
	cmd.Flags().BoolVar(&templateForce, "force", false, "overwrite an existing file")
	return cmd
}

func runTemplate(cmd *cobra.Command, args []string) error {
	target := templateOutput
	if target == "" {
		switch templateKind {
		case "config":
			target = "/etc/rotorctl/config.toml"
		case "declarations":
			target = "/etc/rotorctl/rotor.d/00-defaults.toml"
		}
	}
	if err := config.WriteTemplate(target, templateKind, templateForce); err != nil {
		return err
	}
	fmt.Printf("Wrote %s template to %s\n", templateKind, target)
	return nil
}
