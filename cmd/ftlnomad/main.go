package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "ftlnomad",
		Short:        "FTL Nomad content repository and star map",
		SilenceUsage: true,
	}
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return loadDotEnv(dotEnvPath)
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "Path to the project config file")
	root.PersistentFlags().StringVar(&dotEnvPath, "env-file", ".env", "Optional dotenv file loaded before the config")

	root.AddCommand(serveCmd())
	root.AddCommand(mcpCmd())
	root.AddCommand(listCmd())
	root.AddCommand(showCmd())
	root.AddCommand(gridCmd())
	root.AddCommand(searchCmd())
	root.AddCommand(indexCmd())
	root.AddCommand(queryCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(versionCmd())
	return root
}
