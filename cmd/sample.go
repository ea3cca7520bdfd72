package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"profile-server/di"
	"profile-server/models"
	"profile-server/util"

	"github.com/spf13/cobra"
)

// sampleCmd represents the sample command
var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Sample one region and write its profile chart",
	Long: `Sample elevations along the north-west to south-east diagonal of a region
and render the elevation profile chart to an HTML file.

Examples:
  profile-server sample --north 44.6 --south 44.5 --east -78.5 --west -78.6
  profile-server sample --north 44.6 --south 44.5 --east -78.5 --west -78.6 --out chart.html --json profile.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		north, _ := cmd.Flags().GetFloat64("north")
		south, _ := cmd.Flags().GetFloat64("south")
		east, _ := cmd.Flags().GetFloat64("east")
		west, _ := cmd.Flags().GetFloat64("west")
		out, _ := cmd.Flags().GetString("out")
		jsonOut, _ := cmd.Flags().GetString("json")

		bounds := models.Bounds{North: north, South: south, East: east, West: west}
		if err := bounds.Validate(); err != nil {
			return err
		}

		cfg := loadConfig(cmd)
		container, err := di.NewContainer(cfg)
		if err != nil {
			return err
		}
		defer container.Close()

		rec, err := container.ProfileService.Refresh(context.Background(), bounds)
		if err != nil {
			return fmt.Errorf("sample %s: %w", bounds, err)
		}
		util.PrintProfilePartially(rec.Samples)
		fmt.Printf("Transect: %.0f meters\n", rec.TransectMeters)

		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		defer f.Close()
		if err := container.ProfileChart.Render(f); err != nil {
			return fmt.Errorf("render chart: %w", err)
		}
		log.Printf("[sample] Chart written to %s", out)

		if jsonOut != "" {
			if err := util.WriteProfileToJSON(jsonOut, rec.Samples); err != nil {
				return err
			}
			log.Printf("[sample] Profile written to %s", jsonOut)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)

	// Required flags
	sampleCmd.Flags().Float64("north", 0, "North edge latitude (required)")
	sampleCmd.Flags().Float64("south", 0, "South edge latitude (required)")
	sampleCmd.Flags().Float64("east", 0, "East edge longitude (required)")
	sampleCmd.Flags().Float64("west", 0, "West edge longitude (required)")
	sampleCmd.MarkFlagRequired("north")
	sampleCmd.MarkFlagRequired("south")
	sampleCmd.MarkFlagRequired("east")
	sampleCmd.MarkFlagRequired("west")

	// Optional flags
	sampleCmd.Flags().StringP("out", "o", "chart.html", "HTML file for the chart")
	sampleCmd.Flags().String("json", "", "Also write the sampled profile as JSON")
}
