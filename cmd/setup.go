package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"unyield-service-faceblur/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through setting up the cascade model path,
Google Drive credentials, and server settings. Pipeline tuning values
keep their defaults unless you change them afterwards.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	return RunSetupWithPrompter(DefaultPrompter, "config/config.yaml")
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string) error {
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Println("Setup cancelled.")
			return nil
		}
	}

	fmt.Println("Welcome to unyield-service-faceblur setup!")
	fmt.Println()

	cfg := &config.Config{}

	if err := promptDetection(prompter, cfg); err != nil {
		return err
	}
	if err := promptGoogle(prompter, cfg); err != nil {
		return err
	}
	if err := promptServer(prompter, cfg); err != nil {
		return err
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration is invalid: %w", err)
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Println()
	fmt.Printf("Configuration saved to %s\n", configPath)
	return nil
}

func promptDetection(prompter Prompter, cfg *config.Config) error {
	cascade, err := prompter.Input("Path to the Haar cascade model file?", "models/haarcascade_frontalface_default.xml")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if cascade == "" {
		return fmt.Errorf("cascade file is required")
	}
	cfg.Detection.CascadeFile = cascade

	scratch, err := prompter.Input("Scratch directory for per-run workspaces? (empty for system temp)", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Paths.ScratchDirectory = scratch

	return nil
}

func promptGoogle(prompter Prompter, cfg *config.Config) error {
	credentials, err := prompter.Input("Path to Google credentials file?", "credentials.json")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if credentials == "" {
		credentials = "credentials.json"
	}
	cfg.Google.CredentialsFile = credentials

	useOAuth, err := prompter.Confirm("Use OAuth instead of a service account?", false)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if useOAuth {
		token, err := prompter.Input("Path to the OAuth token file?", "token.json")
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		cfg.Google.TokenFile = token
	}

	folder, err := prompter.Input("Google Drive folder ID for blurred videos?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if folder == "" {
		return fmt.Errorf("folder ID is required")
	}
	cfg.Google.UploadsFolderID = folder

	return nil
}

func promptServer(prompter Prompter, cfg *config.Config) error {
	portStr, err := prompter.Input("HTTP API port?", strconv.Itoa(config.DefaultServerPort))
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 {
			return fmt.Errorf("invalid port %q", portStr)
		}
		cfg.Server.Port = port
	}
	return nil
}
