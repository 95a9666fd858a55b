package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	appanonymize "unyield-service-faceblur/application/anonymize"
	"unyield-service-faceblur/infrastructure/config"
	"unyield-service-faceblur/infrastructure/detection"
	"unyield-service-faceblur/infrastructure/drive"
	"unyield-service-faceblur/infrastructure/fetch"
	"unyield-service-faceblur/infrastructure/ffmpeg"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "unyield-service-faceblur",
	Short: "Anonymize faces in submitted workout videos",
	Long: `unyield-service-faceblur blurs faces in user-submitted workout videos
before they become publicly visible:

  - Fetch the submitted video by URL
  - Sample frames and detect faces
  - Blur each detected face region
  - Re-encode with the original audio
  - Publish the blurred video to Google Drive

If any step fails, the original video URL is served unchanged so a
submission is never blocked.

Example:
  unyield-service-faceblur blur --url https://cdn.example.com/submission.mp4
  unyield-service-faceblur serve`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = "config/config.yaml"
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		// Config file is optional for some commands (like help)
		// Commands that need config will check and error appropriately
		cfg = nil
	}
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	return cfg
}

// buildPipelineService wires the production pipeline from configuration
func buildPipelineService(ctx context.Context, cfg *config.Config, output io.Writer) (*appanonymize.Service, error) {
	fetcher := fetch.NewFetcher()
	sampler := ffmpeg.NewSampler(ffmpeg.WithSamplerTimeout(cfg.TranscodeTimeout()))
	reassembler := ffmpeg.NewReassembler(ffmpeg.WithReassemblerTimeout(cfg.TranscodeTimeout()))
	detector := detection.NewCascadeDetector(cfg.Detection)
	blurrer := detection.NewGaussianBlurrer(cfg.Detection, detection.WithBlurrerOutput(output))

	var (
		driveClient *drive.Client
		err         error
	)
	if cfg.Google.TokenFile != "" {
		driveClient, err = drive.NewClientWithOAuth(ctx, cfg.Google.CredentialsFile, cfg.Google.TokenFile,
			drive.WithFolderID(cfg.Google.UploadsFolderID))
	} else {
		driveClient, err = drive.NewClient(ctx, cfg.Google.CredentialsFile,
			drive.WithFolderID(cfg.Google.UploadsFolderID))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Drive client: %w", err)
	}

	return appanonymize.NewService(
		fetcher,
		sampler,
		detector,
		blurrer,
		reassembler,
		driveClient,
		cfg,
		output,
	), nil
}
