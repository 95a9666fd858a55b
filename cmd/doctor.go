package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"unyield-service-faceblur/infrastructure/config"
	"unyield-service-faceblur/infrastructure/drive"
	"unyield-service-faceblur/infrastructure/ffmpeg"

	"github.com/spf13/cobra"
)

var doctorRemote bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the service's external dependencies are available",
	Long: `Verify the environment the pipeline depends on:

  - ffmpeg is installed and runnable
  - the Haar cascade model file exists
  - the configuration file parses and validates
  - the scratch directory is writable
  - with --remote, Google Drive is reachable and has free quota

Exits non-zero if any check fails.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorRemote, "remote", false, "also check Google Drive connectivity and quota")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	failed := 0
	check := func(name string, err error) {
		if err != nil {
			failed++
			fmt.Printf("FAIL  %s: %v\n", name, err)
			return
		}
		fmt.Printf("ok    %s\n", name)
	}

	verifyCtx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()
	check("ffmpeg", ffmpeg.NewSampler().VerifyInstalled(verifyCtx))

	cfg := GetConfig()
	if cfg == nil {
		check("config", fmt.Errorf("config/config.yaml not found or invalid"))
		// The remaining checks need configuration
		return fmt.Errorf("%d check(s) failed", failed)
	}
	check("config", cfg.Validate())
	check("cascade model", checkFileExists(cfg.Detection.CascadeFile))
	check("scratch directory", checkScratchWritable(cfg.Paths.ScratchDirectory))

	if doctorRemote {
		check("google drive", checkDrive(cmd.Context(), cfg))
	}

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	fmt.Println("All checks passed.")
	return nil
}

func checkFileExists(path string) error {
	if path == "" {
		return fmt.Errorf("no path configured")
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

func checkDrive(ctx context.Context, cfg *config.Config) error {
	var (
		client *drive.Client
		err    error
	)
	if cfg.Google.TokenFile != "" {
		client, err = drive.NewClientWithOAuth(ctx, cfg.Google.CredentialsFile, cfg.Google.TokenFile)
	} else {
		client, err = drive.NewClient(ctx, cfg.Google.CredentialsFile)
	}
	if err != nil {
		return err
	}

	quota, err := client.GetStorageQuota(ctx)
	if err != nil {
		return err
	}
	if quota.TotalBytes > 0 && !quota.HasSpaceFor(minFreeBytes) {
		return fmt.Errorf("less than %d MB free (%d of %d bytes used)",
			minFreeBytes/(1024*1024), quota.UsedBytes, quota.TotalBytes)
	}
	return nil
}

// minFreeBytes is the smallest Drive headroom doctor accepts; a published
// video is capped well below this.
const minFreeBytes = 500 * 1024 * 1024

func checkScratchWritable(dir string) error {
	if dir == "" {
		dir = os.TempDir()
	}
	probe, err := os.CreateTemp(dir, "faceblur-doctor-*")
	if err != nil {
		return err
	}
	probe.Close()
	return os.Remove(probe.Name())
}
