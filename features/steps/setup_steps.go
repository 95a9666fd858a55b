//go:build integration

package steps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"unyield-service-faceblur/cmd"
	"unyield-service-faceblur/infrastructure/config"

	"github.com/cucumber/godog"
)

type setupContext struct {
	tempDir         string
	configPath      string
	originalContent string
	setupOutput     string
	err             error
}

var SharedSetupContext = &setupContext{}

// MockPrompter implements cmd.Prompter for testing
type MockPrompter struct {
	inputResponses   []string
	confirmResponses []bool
	inputIndex       int
	confirmIndex     int
}

func NewMockPrompter(inputs []string, confirms []bool) *MockPrompter {
	return &MockPrompter{
		inputResponses:   inputs,
		confirmResponses: confirms,
	}
}

func (m *MockPrompter) Input(message string, defaultValue string) (string, error) {
	if m.inputIndex >= len(m.inputResponses) {
		return defaultValue, nil
	}
	response := m.inputResponses[m.inputIndex]
	m.inputIndex++
	if response == "" {
		return defaultValue, nil
	}
	return response, nil
}

func (m *MockPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	if m.confirmIndex >= len(m.confirmResponses) {
		return defaultValue, nil
	}
	response := m.confirmResponses[m.confirmIndex]
	m.confirmIndex++
	return response, nil
}

func InitializeSetupScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedSetupContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "setup-test-*")
		if err != nil {
			return c, err
		}
		*testCtx = setupContext{
			tempDir:    tempDir,
			configPath: filepath.Join(tempDir, "config", "config.yaml"),
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^no config file exists for setup$`, testCtx.noConfigFileExistsForSetup)
	ctx.Step(`^a config file already exists for setup$`, testCtx.aConfigFileAlreadyExistsForSetup)
	ctx.Step(`^I run the setup command with inputs:$`, testCtx.iRunTheSetupCommandWithInputs)
	ctx.Step(`^I run the setup command with confirmation "([^"]*)"$`, testCtx.iRunTheSetupCommandWithConfirmation)
	ctx.Step(`^a config file should exist$`, testCtx.aConfigFileShouldExist)
	ctx.Step(`^the config should have cascade_file "([^"]*)"$`, testCtx.theConfigShouldHaveCascadeFile)
	ctx.Step(`^the config should have uploads_folder_id "([^"]*)"$`, testCtx.theConfigShouldHaveUploadsFolderID)
	ctx.Step(`^the config should have port (\d+)$`, testCtx.theConfigShouldHavePort)
	ctx.Step(`^the setup should be cancelled$`, testCtx.theSetupShouldBeCancelled)
	ctx.Step(`^the existing config should be unchanged$`, testCtx.theExistingConfigShouldBeUnchanged)
}

func (s *setupContext) noConfigFileExistsForSetup() error {
	return os.MkdirAll(filepath.Dir(s.configPath), 0755)
}

func (s *setupContext) aConfigFileAlreadyExistsForSetup() error {
	if err := os.MkdirAll(filepath.Dir(s.configPath), 0755); err != nil {
		return err
	}
	s.originalContent = "detection:\n  cascade_file: existing.xml\n"
	return os.WriteFile(s.configPath, []byte(s.originalContent), 0644)
}

func (s *setupContext) iRunTheSetupCommandWithInputs(table *godog.Table) error {
	inputs := make([]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		inputs = append(inputs, row.Cells[0].Value)
	}
	prompter := NewMockPrompter(inputs, nil)
	s.err = cmd.RunSetupWithPrompter(prompter, s.configPath)
	return s.err
}

func (s *setupContext) iRunTheSetupCommandWithConfirmation(answer string) error {
	prompter := NewMockPrompter(nil, []bool{answer == "yes"})
	s.err = cmd.RunSetupWithPrompter(prompter, s.configPath)
	return s.err
}

func (s *setupContext) aConfigFileShouldExist() error {
	if _, err := os.Stat(s.configPath); err != nil {
		return fmt.Errorf("expected config file at %s: %w", s.configPath, err)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveCascadeFile(expected string) error {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return err
	}
	if cfg.Detection.CascadeFile != expected {
		return fmt.Errorf("expected cascade_file %q, got %q", expected, cfg.Detection.CascadeFile)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveUploadsFolderID(expected string) error {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return err
	}
	if cfg.Google.UploadsFolderID != expected {
		return fmt.Errorf("expected uploads_folder_id %q, got %q", expected, cfg.Google.UploadsFolderID)
	}
	return nil
}

func (s *setupContext) theConfigShouldHavePort(expected int) error {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return err
	}
	if cfg.Server.Port != expected {
		return fmt.Errorf("expected port %d, got %d", expected, cfg.Server.Port)
	}
	return nil
}

func (s *setupContext) theSetupShouldBeCancelled() error {
	if s.err != nil {
		return fmt.Errorf("setup should exit cleanly when cancelled, got %v", s.err)
	}
	if _, err := os.Stat(s.configPath); err == nil {
		data, readErr := os.ReadFile(s.configPath)
		if readErr == nil && string(data) != s.originalContent {
			return fmt.Errorf("config file was modified")
		}
	}
	return nil
}

func (s *setupContext) theExistingConfigShouldBeUnchanged() error {
	data, err := os.ReadFile(s.configPath)
	if err != nil {
		return err
	}
	if string(data) != s.originalContent {
		return fmt.Errorf("config file content changed")
	}
	return nil
}
