package main

import (
	"fmt"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/rotorlabs/rotorctl/internal/compile"
	"github.com/rotorlabs/rotorctl/internal/declare"
	"github.com/rotorlabs/rotorctl/internal/journal"
	"github.com/rotorlabs/rotorctl/internal/publish"
	"github.com/rotorlabs/rotorctl/internal/schedule"
)

var (
	renderDir    string
	renderOutput string
	renderStdout bool
)

func newRenderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Compile the declaration layers and publish the rotation document",
		RunE:  runRender,
	}
	cmd.Flags().StringVar(&renderDir, "dir", "", "declarations directory (defaults to the configured one)")
	cmd.Flags().StringVar(&renderOutput, "output", "", "destination path (defaults to the configured one)")
	cmd.Flags().BoolVar(&renderStdout, "stdout", false, "print the document instead of publishing it")
	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	dir := renderDir
	if dir == "" {
		dir = cfg.DeclarationsDir
	}
	fs := osfs.New("/")

	// Inspection mode: compile and print, nothing published or journaled.
	if renderStdout {
		src, err := declare.NewLoader(fs).Source(dir)
		if err != nil {
			return err
		}
		doc, err := compile.Compile(src)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), doc)
		return nil
	}

	target := renderOutput
	if target == "" {
		target = cfg.OutputPath
	}
	recorder := journal.Discard
	if cfg.JournalPath != "" {
		j, err := journal.Open(cfg.JournalPath)
		if err != nil {
			return err
		}
		defer j.Close()
		recorder = j
	}

	// One render pass through the same path the daemon takes, so the
	// journal and metrics see one-shot renders too.
	pass := schedule.New(schedule.Options{
		Loader:     declare.NewLoader(fs),
		Writer:     publish.NewWriter(fs),
		Recorder:   recorder,
		DeclDir:    dir,
		OutputPath: target,
	})
	n, err := pass.RenderOnce(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("Published %d entries to %s\n", n, target)
	return nil
}
