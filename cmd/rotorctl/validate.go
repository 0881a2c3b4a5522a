package main

import (
	"fmt"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/rotorlabs/rotorctl/internal/compile"
	"github.com/rotorlabs/rotorctl/internal/declare"
)

var validateDir string

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the declaration layers without publishing anything",
		RunE:  runValidate,
	}
	cmd.Flags().StringVar(&validateDir, "dir", "", "declarations directory (defaults to the configured one)")
	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	dir := validateDir
	if dir == "" {
		dir = cfg.DeclarationsDir
	}

	src, err := declare.NewLoader(osfs.New("/")).Source(dir)
	if err != nil {
		return err
	}
	entries, err := compile.Collect(src)
	if err != nil {
		return err
	}
	if err := compile.Validate(entries); err != nil {
		return err
	}
	fmt.Printf("Validated %d entries from %s\n", len(entries), dir)
	return nil
}
