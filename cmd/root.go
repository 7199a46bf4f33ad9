package cmd

import "github.com/spf13/cobra"

type rootOptions struct {
	configPath string
	deps       dependencies
}

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	return newRootCmdWithDeps(defaultDependencies())
}

func newRootCmdWithDeps(deps dependencies) *cobra.Command {
	opts := &rootOptions{deps: deps}

	rootCmd := &cobra.Command{
		Use:           "pn",
		Short:         "Portainer notifier (pn): mirror stack status into Discord",
		Long:          "pn polls a Portainer environment and keeps one Discord message per stack up to date with the stack's running containers.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default: config.toml in ./, $XDG_CONFIG_HOME/pn or ~/.config/pn)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(opts),
		newSyncCmd(opts),
		newStatusCmd(opts),
		newStateCmd(opts),
		newConfigCmd(opts),
	)

	return rootCmd
}
