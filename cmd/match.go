package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ryanseay/covermatch/pkg/covermatch"
	"github.com/ryanseay/covermatch/pkg/utils"
)

var matchCmd = &cobra.Command{
	Use:   "match <youtube-url>",
	Short: "Run one matching pipeline from the terminal",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, log := bootstrap()

		videoID, err := utils.ExtractVideoID(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		pipeline := buildPipeline(cfg, log)

		var failed bool
		for ev := range pipeline.Process(cmd.Context(), videoID) {
			fmt.Printf("[%3d%%] %-14s %s\n", ev.Progress, ev.Status, ev.Message)
			if ev.Status == covermatch.StatusError {
				failed = true
			}
			if ev.Result != nil {
				printResult(ev.Result)
			}
		}
		if failed {
			os.Exit(1)
		}
	},
}

func printResult(result *covermatch.MatchResult) {
	fmt.Printf("\nMatch:      %s - %s\n", result.Match.Artist, result.Match.Title)
	fmt.Printf("Confidence: %s (gap %.3f)\n", result.Confidence, result.Gap)
	fmt.Printf("Scores:     combined %.3f | audio %.3f | lyrics %.3f\n",
		result.Score.Combined, result.Score.AudioSim, result.Score.LyricsSim)
	fmt.Println("\nTop 5:")
	for i, ts := range result.Top5 {
		fmt.Printf("  %d. %-40s %.3f (A:%.3f L:%.3f)\n",
			i+1, ts.Artist+" - "+ts.Title, ts.Combined, ts.AudioSim, ts.LyricsSim)
	}
}

func init() {
	rootCmd.AddCommand(matchCmd)
}
