package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hindsight-mem/hindsight/pkg/config"
	"github.com/hindsight-mem/hindsight/pkg/store"
)

func executeCLI() error {
	root := buildRootCommand()
	if err := root.Execute(); err != nil {
		return err
	}
	return nil
}

func buildRootCommand() *cobra.Command {
	var showVersion bool

	root := &cobra.Command{
		Use:   "hindsight",
		Short: "Persistent file-backed memory hooks for a coding assistant",
		Long: strings.TrimSpace(`hindsight gives a coding assistant memory that survives across sessions.

Wire the subcommands into the assistant's lifecycle hooks: observe records
one tool invocation, session-start assembles context from previous sessions,
and session-end distills the finished session into a summary. Each command
reads one JSON event envelope from stdin and writes a JSON outcome to stdout.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				printVersion()
				return nil
			}
			_ = cmd.Help()
			return fmt.Errorf("a subcommand is required")
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.Flags().BoolVarP(&showVersion, "version", "v", false, "Show build/version metadata")

	root.AddCommand(newObserveCommand())
	root.AddCommand(newSessionStartCommand())
	root.AddCommand(newSessionEndCommand())
	root.AddCommand(newStatusCommand())
	root.AddCommand(newVersionCommand())

	return root
}

func newObserveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "observe",
		Short:   "Record one tool invocation as an observation",
		Long:    "Read a post-tool-use event envelope from stdin and persist an observation for it.",
		Example: "  hindsight observe < event.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHook(cmd.InOrStdin(), cmd.OutOrStdout(), handleObserve)
		},
	}
}

func newSessionStartCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "session-start",
		Short:   "Assemble memory context for a fresh session",
		Long:    "Read a session-start envelope from stdin and reply with context assembled from stored memory.",
		Example: "  hindsight session-start < event.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHook(cmd.InOrStdin(), cmd.OutOrStdout(), handleSessionStart)
		},
	}
}

func newSessionEndCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "session-end",
		Short:   "Summarize a finished session",
		Long:    "Read a session-end envelope from stdin, summarize the session when it recorded enough observations, and run due maintenance.",
		Example: "  hindsight session-end < event.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHook(cmd.InOrStdin(), cmd.OutOrStdout(), handleSessionEnd)
		},
	}
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   "Show memory archive statistics",
		Example: "  hindsight status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig("")
			if err != nil {
				return err
			}
			st, err := store.NewSQLiteStore(cfg.ArchivePath())
			if err != nil {
				return fmt.Errorf("open archive: %w", err)
			}
			defer st.Close()

			stats, err := st.Stats(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Archive: %s\n", cfg.ArchivePath())
			fmt.Fprintf(out, "Frames:  %d\n", stats.FrameCount)
			fmt.Fprintf(out, "Size:    %d bytes\n", stats.SizeBytes)
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Show build/version metadata",
		Example: "  hindsight version",
		RunE: func(cmd *cobra.Command, args []string) error {
			printVersion()
			return nil
		},
	}
}
