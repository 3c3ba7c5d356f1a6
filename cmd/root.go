package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/sicfor/sicfor/internal/config"
	"github.com/spf13/cobra"
)

// Cfg is the global variable that will contain the loaded configuration
// It will be accessible to all Cobra commands throughout the application
var Cfg *config.Config

// RootCmd is the base command for the CLI application
// All other commands (create, list, lookup, render, export, remove, migrate,
// run-server) are added as subcommands
var RootCmd = &cobra.Command{
	Use:   "sicfor",
	Short: "A local certificate manager",
	Long: `A local certificate manager that issues certificate records, keeps them
in a local history, renders them as PNG images and resolves verification codes.`,
}

// Execute is the main entry point for the Cobra application
// It is called from 'main.go' and handles command execution and error handling
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

// init() is a special Go function that executes automatically before main()
// It's used here to initialize Cobra and set up command initialization hooks
func init() {
	// Set up configuration initialization to run before any command executes
	// This ensures configuration is loaded before any command needs it
	cobra.OnInitialize(initConfig)

	// Subcommands are NOT added here: each one registers itself via its own
	// init() function, which keeps the packages modular and avoids import
	// cycles.
}

// initConfig loads the application configuration
// This function is called at the beginning of every Cobra command execution
// thanks to `cobra.OnInitialize(initConfig)` set up above
func initConfig() {
	var err error

	// Load configuration from file, environment variables, and defaults
	// The config package handles the precedence and fallback logic
	Cfg, err = config.LoadConfig()
	if err != nil {
		log.Printf("Warning: Problem loading configuration: %v. Using default values.", err)
	}
}
