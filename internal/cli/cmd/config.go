package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/gregify/internal/cli/styles"
	"github.com/bnema/gregify/internal/infrastructure/config"
)

const redacted = "********"

var configSchemaWrite string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
	Long:  `Show the effective configuration, its JSON schema and where files live.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as JSON",
	Long: `Print the configuration after defaults, the config file and GREGIFY_*
environment variables were merged. The API key is redacted.`,
	RunE: runConfigShow,
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the configuration JSON schema",
	RunE:  runConfigSchema,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show config, schema and database locations",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSchemaCmd)
	configCmd.AddCommand(configPathCmd)
	configSchemaCmd.Flags().StringVarP(&configSchemaWrite, "write", "w", "", "write the schema to this file instead of stdout")
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}

	cfg := *app.Config
	if cfg.Backend.APIKey != "" {
		cfg.Backend.APIKey = redacted
	}

	if app.Manager != nil {
		fmt.Fprint(os.Stderr, styles.NewConfigRenderer(app.Theme).RenderSource(app.Manager.GetConfigFile(), false))
	} else {
		fmt.Fprint(os.Stderr, styles.NewConfigRenderer(app.Theme).RenderSource("", true))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}

func runConfigSchema(_ *cobra.Command, _ []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}
	renderer := styles.NewConfigRenderer(app.Theme)

	if configSchemaWrite != "" {
		if err := config.WriteSchemaFile(configSchemaWrite); err != nil {
			fmt.Println(renderer.RenderError(err))
			return err
		}
		fmt.Println(renderer.RenderSchemaWritten(configSchemaWrite))
		return nil
	}

	schema, err := config.Schema()
	if err != nil {
		fmt.Println(renderer.RenderError(err))
		return err
	}
	_, err = os.Stdout.Write(append(schema, '\n'))
	return err
}

func runConfigPath(_ *cobra.Command, _ []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}
	renderer := styles.NewConfigRenderer(app.Theme)

	configFile, err := config.GetConfigFile()
	if app.Manager != nil {
		configFile, err = app.Manager.GetConfigFile(), nil
	}
	if err != nil {
		fmt.Println(renderer.RenderError(err))
		return err
	}
	schemaFile, err := config.GetSchemaFile()
	if err != nil {
		fmt.Println(renderer.RenderError(err))
		return err
	}

	_, statErr := os.Stat(configFile)
	fmt.Print(renderer.RenderPaths(configFile, schemaFile, app.Config.Database.Path, statErr == nil))
	return nil
}
