package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/pders01/gallr/internal/config"
)

func init() {
	rootCmd.AddCommand(versionCmd, configCmd)
	configCmd.AddCommand(configGenCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gallr %s\n", Version)
		fmt.Println("Terminal image gallery")
		fmt.Println("github.com/pders01/gallr")
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configGenCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the default configuration file",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		path := configPath
		if path == "" {
			path = config.DefaultConfigPath()
		}

		if err := config.GenerateDefaultConfig(path); err != nil {
			log.Fatalf("Failed to generate config: %v", err)
		}
		fmt.Printf("Generated default configuration at: %s\n", path)
	},
}
