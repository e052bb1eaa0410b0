package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/hookworks/git-slack-hook/pkg/config"
	"github.com/hookworks/git-slack-hook/pkg/git"
	"github.com/hookworks/git-slack-hook/pkg/hook"
	"github.com/hookworks/git-slack-hook/pkg/slack"
	"github.com/hookworks/git-slack-hook/pkg/version"
)

var (
	// Version contains the application version number. It's set via ldflags
	// when building.
	Version = ""

	// CommitSHA contains the SHA of the commit that this application was
	// built against. It's set via ldflags when building.
	CommitSHA = ""

	configPath string

	rootCmd = &cobra.Command{
		Use:   "git-slack-hook",
		Short: "Post pushed ref updates to a Slack incoming webhook",
		Long: "git-slack-hook is a git post-receive hook. It reads ref updates from\n" +
			"standard input and posts a summary of each one (branch or tag created,\n" +
			"updated, or deleted, plus commit log lines) to a Slack incoming webhook.",
		SilenceUsage: true,
		RunE:         run,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
	rootCmd.AddCommand(manCmd)
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Sum != "" {
			Version = info.Main.Version
		} else {
			Version = "unknown (built from source)"
		}
	}
	rootCmd.Version = Version
	version.Version = Version
	version.CommitSHA = CommitSHA
}

func run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	id, err := hook.ResolveIdentity()
	if err != nil {
		return err
	}

	repo, err := git.Open(id.WorkDir)
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}

	cfg := config.Default()
	if configPath != "" {
		if err := cfg.ParseFile(configPath); err != nil {
			return err
		}
	}
	cfg.ParseGitConfig(repo, id.RepoName)
	if err := cfg.ParseEnv(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), cmd.UsageString())
		fmt.Fprintln(cmd.ErrOrStderr(), config.SettingsReference)
		return err
	}

	logger := newLogger(cfg)
	ctx = log.WithContext(ctx, logger)

	client := slack.NewClient(cfg.WebhookURL())
	if cfg.Debug {
		client.Debug = true
		client.Out = cmd.OutOrStdout()
	}

	return hook.New(cfg, id, repo, client).Run(ctx, cmd.InOrStdin())
}

func newLogger(cfg *config.Config) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
	})
	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	return logger
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
