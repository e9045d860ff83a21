package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/houdini-kb/hipindex/cmd/hipindex/commands"
	"github.com/houdini-kb/hipindex/internal/hiplog"
	"github.com/spf13/cobra"
)

func main() {
	log := hiplog.For("cli")

	rootCmd := &cobra.Command{
		Use:   "hipindex",
		Short: "Ingest Houdini HIP scene archives into a parameter knowledge base",
	}

	rootCmd.AddCommand(commands.IngestCmd)
	rootCmd.AddCommand(commands.CacheCmd)
	rootCmd.AddCommand(commands.StatsCmd)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	go func() {
		<-sigs
		log.Info().Msg("interrupted, exiting")
		os.Exit(1)
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
