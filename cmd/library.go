package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ryanseay/covermatch/pkg/covermatch"
	"github.com/ryanseay/covermatch/pkg/covermatch/library"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage the reference track library",
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tracks in the configured library",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, log := bootstrap()
		lib := loadLibrary(cfg, log)

		for i, t := range lib.Tracks() {
			genre := t.Genre
			if genre == "" {
				genre = "-"
			}
			fmt.Printf("%3d. %s - %s [%s]\n", i+1, t.Artist, t.Title, genre)
		}
	},
}

var libraryImportCmd = &cobra.Command{
	Use:   "import <library.json> <library.db>",
	Short: "Import a JSON library into a SQLite database",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		_, log := bootstrap()

		jsonPath, dbPath := args[0], args[1]

		tracks, err := library.JSONLoader{}.Load(jsonPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		// Validate before writing anything.
		if _, err := covermatch.NewLibrary(tracks); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		if err := library.Import(dbPath, tracks); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		log.Infof("imported %d tracks into %s", len(tracks), dbPath)
	},
}

func init() {
	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(libraryImportCmd)
	rootCmd.AddCommand(libraryCmd)
}
