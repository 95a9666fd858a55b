package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var blurURL string

var blurCmd = &cobra.Command{
	Use:   "blur",
	Short: "Anonymize a single video by URL",
	Long: `Run the anonymization pipeline once for a video URL and print the
published URL of the blurred result.

If the pipeline fails for any reason the original URL is printed instead;
the command still exits successfully because a failed anonymization falls
back to serving the source video.

Example:
  unyield-service-faceblur blur --url https://cdn.example.com/submission.mp4`,
	RunE: runBlur,
}

func init() {
	rootCmd.AddCommand(blurCmd)
	blurCmd.Flags().StringVar(&blurURL, "url", "", "URL of the video to anonymize (required)")
	blurCmd.MarkFlagRequired("url")
}

func runBlur(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("configuration not loaded; ensure config/config.yaml exists or run setup")
	}

	ctx := cmd.Context()

	service, err := buildPipelineService(ctx, cfg, os.Stdout)
	if err != nil {
		return err
	}

	result := service.ProcessVideo(ctx, blurURL)

	if result.UsedFallback {
		fmt.Printf("Anonymization failed; serving original video.\n")
	}
	fmt.Printf("Faces found:   %d\n", result.FacesFound)
	fmt.Printf("Video URL:     %s\n", result.BlurredVideoURL)
	fmt.Printf("Original URL:  %s\n", result.OriginalVideoURL)

	return nil
}
