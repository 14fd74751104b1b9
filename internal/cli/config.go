package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/loupedev/loupe/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage loupe configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective merged configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(nil)
		if err != nil {
			exitCode = fail(err)
			return
		}
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			exitCode = fail(err)
			return
		}
		fmt.Fprintln(os.Stdout, string(data))
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default global config file",
	Run: func(cmd *cobra.Command, args []string) {
		if err := config.Save(config.Default()); err != nil {
			exitCode = fail(err)
			return
		}
		path, _ := config.ConfigPath()
		fmt.Fprintf(os.Stderr, "wrote %s\n", path)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one key in the global config file",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(nil)
		if err != nil {
			exitCode = fail(err)
			return
		}
		if err := config.SetField(&cfg, args[0], args[1]); err != nil {
			exitCode = fail(err)
			return
		}
		if err := cfg.Validate(); err != nil {
			exitCode = fail(err)
			return
		}
		if err := config.Save(cfg); err != nil {
			exitCode = fail(err)
			return
		}
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
}
