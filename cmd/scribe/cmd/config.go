package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/scribe/configs"
	"github.com/Aman-CERP/scribe/internal/config"
	"github.com/Aman-CERP/scribe/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage user and project configuration.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/scribe/config.yaml)
  3. Project config (.scribe.yaml, .scribe.yml or .scribe.toml in the
     nearest enclosing directory that has one)
  4. Environment variables (SCRIBE_REGEX, SCRIBE_REGEX_ENGINE,
     SCRIBE_LOG_LEVEL, SCRIBE_WATCH)`,
		Example: `  # Create user config from template
  scribe config init

  # Create a project config in the current directory
  scribe config init --project

  # Show effective configuration (merged from all sources)
  scribe config show`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigRestoreCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force, project bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file",
		Long: `Create the user configuration file from a template, or with --project a
.scribe.yaml in the current directory.

With --force an existing user configuration is backed up and upgraded:
your settings are kept and options added since it was written get their
defaults.`,
		Example: `  scribe config init
  scribe config init --force
  scribe config init --project`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if project {
				return runConfigInitProject(cmd, force)
			}
			return runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Upgrade or overwrite an existing configuration")
	cmd.Flags().BoolVar(&project, "project", false, "Create .scribe.yaml in the current directory")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var (
		jsonOutput bool
		source     string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Long: `Show the configuration after merging all sources, or a single source
with --source.`,
		Example: `  scribe config show
  scribe config show --json
  scribe config show --source user`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, jsonOutput, source)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&source, "source", "merged", "Config source: merged, user, project, defaults")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print user config file path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.GetUserConfigPath())
			return err
		},
	}
}

func newConfigRestoreCmd() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "restore [backup]",
		Short: "Restore the user config from a backup",
		Long: `Restore the user configuration from a backup made by 'config init --force'.
Without an argument the newest backup is used. The current file is backed
up first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				return runConfigListBackups(cmd)
			}
			return runConfigRestore(cmd, firstArg(args))
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "List available backups, newest first")

	return cmd
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.OutOrStdout())
	configPath := config.GetUserConfigPath()

	if config.UserConfigExists() {
		if !force {
			out.Warning("User configuration already exists")
			out.Statusf("📁", "Location: %s", configPath)
			out.Newline()
			out.Status("💡", "Use --force to upgrade with new defaults (preserves your settings)")
			return nil
		}
		return runConfigUpgrade(out, configPath)
	}

	if err := os.MkdirAll(config.GetUserConfigDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(configs.UserConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out.Success("Created user configuration")
	out.Statusf("📁", "Location: %s", configPath)
	out.Newline()
	out.Status("📋", "Next steps:")
	out.Status("", "  1. Edit the file to customize settings")
	out.Status("", "  2. Run 'scribe config show' to verify")
	return nil
}

// runConfigUpgrade backs up the user config and fills in new defaults.
func runConfigUpgrade(out *output.Writer, configPath string) error {
	backupPath, err := config.BackupUserConfig()
	if err != nil {
		return fmt.Errorf("failed to backup config: %w", err)
	}

	existing, err := config.LoadUserConfig()
	if err != nil {
		return fmt.Errorf("failed to load existing config: %w", err)
	}
	if existing == nil {
		return fmt.Errorf("config file disappeared during upgrade")
	}

	added := existing.MergeNewDefaults()
	if err := existing.WriteYAML(configPath); err != nil {
		return fmt.Errorf("failed to write upgraded config: %w", err)
	}

	out.Success("Configuration upgraded")
	out.Statusf("📁", "Location: %s", configPath)
	out.Statusf("💾", "Backup: %s", backupPath)
	out.Newline()
	if len(added) > 0 {
		out.Status("✨", "New options added with defaults:")
		for _, field := range added {
			out.Statusf("", "  - %s", field)
		}
	} else {
		out.Status("✓", "Your configuration is already up to date")
	}
	return nil
}

func runConfigInitProject(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.OutOrStdout())

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}
	if existing := config.ProjectConfigPath(cwd); existing != "" && !force {
		out.Warning("Project configuration already exists")
		out.Statusf("📁", "Location: %s", existing)
		out.Status("💡", "Use --force to overwrite")
		return nil
	}

	path := filepath.Join(cwd, config.ProjectConfigNames[0])
	if err := os.WriteFile(path, []byte(configs.ProjectConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("failed to write project config: %w", err)
	}
	out.Success("Created project configuration")
	out.Statusf("📁", "Location: %s", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, jsonOutput bool, source string) error {
	out := output.New(cmd.OutOrStdout())

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	var (
		cfg        *config.Config
		sourceDesc string
	)
	switch source {
	case "merged":
		if cfg, err = loadConfigForDir(cwd); err != nil {
			return err
		}
		sourceDesc = "merged (defaults + user + project + env)"

	case "user":
		path := config.GetUserConfigPath()
		if cfg, err = config.LoadUserConfig(); err != nil {
			return err
		}
		if cfg == nil {
			out.Warning("No user configuration file found")
			out.Statusf("📁", "Expected at: %s", path)
			out.Status("💡", "Run 'scribe config init' to create one")
			return nil
		}
		sourceDesc = fmt.Sprintf("user (%s)", path)

	case "project":
		root, _ := config.FindProjectRoot(cwd)
		var path string
		if cfg, path, err = config.LoadProjectConfig(root); err != nil {
			return err
		}
		if cfg == nil {
			out.Warning("No project configuration file found")
			out.Statusf("📁", "Expected at: %s", filepath.Join(cwd, config.ProjectConfigNames[0]))
			out.Status("💡", "Run 'scribe config init --project' to create one")
			return nil
		}
		sourceDesc = fmt.Sprintf("project (%s)", path)

	case "defaults":
		cfg = config.NewConfig()
		sourceDesc = "defaults (hardcoded)"

	default:
		return fmt.Errorf("invalid source: %s (use: merged, user, project, defaults)", source)
	}

	if jsonOutput {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}

	out.Statusf("📋", "Configuration source: %s", sourceDesc)
	out.Newline()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), string(data))
	return err
}

func runConfigRestore(cmd *cobra.Command, backup string) error {
	out := output.New(cmd.OutOrStdout())

	restored, err := config.RestoreUserConfig(backup)
	if err != nil {
		return err
	}
	out.Success("Restored user configuration")
	out.Statusf("📁", "From: %s", restored)
	out.Statusf("📁", "To: %s", config.GetUserConfigPath())
	return nil
}

func runConfigListBackups(cmd *cobra.Command) error {
	out := output.New(cmd.OutOrStdout())

	backups, err := config.ListUserConfigBackups()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		out.Status("📭", "No backups found")
		return nil
	}
	for _, b := range backups {
		out.Status("", b)
	}
	return nil
}
