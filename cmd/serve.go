package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ryanseay/covermatch/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the covermatch HTTP server",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, log := bootstrap()

		pipeline := buildPipeline(cfg, log)
		results := connectCache(cfg, log)
		defer results.Close()

		var origins []string
		for _, o := range strings.Split(cfg.AllowedOrigins, ",") {
			origins = append(origins, strings.TrimSpace(o))
		}

		srv := server.New(pipeline, results, log, server.Config{
			Port:           cfg.Port,
			AllowedOrigins: origins,
		})
		if err := srv.Start(); err != nil {
			log.Fatalf("server failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
