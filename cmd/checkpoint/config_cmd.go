package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fluxcodestudio/checkpoint/internal/checkerr"
	"github.com/fluxcodestudio/checkpoint/internal/config"
)

// parseConfigValue coerces the raw CLI string into the type the schema
// declares for key, so `config set compression_level 9` writes a YAML
// int rather than the string "9".
func parseConfigValue(key, raw string) interface{} {
	field, ok := config.ByKey()[key]
	if !ok {
		return raw
	}
	switch field.Kind {
	case config.KindInt:
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	case config.KindBool:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
	}
	return raw
}

var configCmd = &cobra.Command{
	Use:     "config",
	GroupID: "ops",
	Short:   "Inspect or change the effective configuration",
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a config value, or every effective setting with no key",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveProjectRoot()
		if err != nil {
			fail(err)
			return nil
		}
		stateRoot, err := resolveStateRoot()
		if err != nil {
			fail(err)
			return nil
		}
		if _, err := loadConfig(root, stateRoot); err != nil {
			fail(err)
			return nil
		}

		if len(args) == 0 {
			if jsonOutput {
				outputJSON(config.AllSettings())
				return nil
			}
			for k, v := range config.AllSettings() {
				fmt.Printf("%s = %v\n", k, v)
			}
			return nil
		}

		key := args[0]
		val := config.AllSettings()[key]
		if jsonOutput {
			outputJSON(map[string]any{key: val})
		} else {
			fmt.Println(val)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config key, writing the change and an audit-log entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		global, _ := cmd.Flags().GetBool("global")

		stateRoot, err := resolveStateRoot()
		if err != nil {
			fail(err)
			return nil
		}

		var path string
		if global {
			path, err = config.GlobalConfigPath()
			if err != nil {
				fail(err)
				return nil
			}
		} else {
			root, err := resolveProjectRoot()
			if err != nil {
				fail(err)
				return nil
			}
			path = filepath.Join(root, ".checkpoint", "config.yaml")
		}

		if err := config.Set(path, stateRoot, args[0], parseConfigValue(args[0], args[1])); err != nil {
			fail(err)
			return nil
		}
		fmt.Printf("%s = %s\n", args[0], args[1])
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the effective configuration against the schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		strict, _ := cmd.Flags().GetBool("strict")

		root, err := resolveProjectRoot()
		if err != nil {
			fail(err)
			return nil
		}
		stateRoot, err := resolveStateRoot()
		if err != nil {
			fail(err)
			return nil
		}
		if _, err := loadConfig(root, stateRoot); err != nil {
			fail(err)
			return nil
		}

		issues := config.Validate(strict)
		if jsonOutput {
			outputJSON(issues)
		} else {
			for _, iss := range issues {
				fmt.Printf("%s: %s\n", iss.Key, iss.Message)
			}
			if len(issues) == 0 {
				fmt.Println("config OK")
			}
		}
		if len(issues) > 0 {
			fail(checkerr.New(checkerr.CategoryConf, "ECONF_INVALID", "correct the reported keys in the config file", fmt.Errorf("%d config issue(s) found", len(issues))))
		}
		return nil
	},
}

var configMigrateCmd = &cobra.Command{
	Use:   "migrate <path>",
	Short: "Rewrite a flat or hierarchical config file in canonical hierarchical form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Migrate(args[0]); err != nil {
			fail(err)
			return nil
		}
		fmt.Println("migrated", args[0])
		return nil
	},
}

func init() {
	configSetCmd.Flags().Bool("global", false, "write to the global config instead of the project config")
	configValidateCmd.Flags().Bool("strict", false, "also fail on unrecognized keys")
	configCmd.AddCommand(configGetCmd, configSetCmd, configValidateCmd, configMigrateCmd)
	rootCmd.AddCommand(configCmd)
}
