package commands

import (
	"context"
	"fmt"

	"github.com/houdini-kb/hipindex/internal/cache"
	"github.com/houdini-kb/hipindex/internal/config"
	"github.com/houdini-kb/hipindex/internal/hiplog"
	"github.com/houdini-kb/hipindex/internal/ingest"
	"github.com/houdini-kb/hipindex/internal/model"
	"github.com/spf13/cobra"
)

var ingestLog = hiplog.For("cli.ingest")

type ingestOptions struct {
	ScanLocal bool
	Class     string
}

var ingestOpts = &ingestOptions{}

var IngestCmd = &cobra.Command{
	Use:   "ingest [source...]",
	Short: "Acquire, parse, and persist one or more HIP archives",
	RunE:  runIngest,
}

func init() {
	IngestCmd.Flags().BoolVar(&ingestOpts.ScanLocal, "scan-local", false, "also ingest every .hip/.hipnc found on this machine's Houdini install")
	IngestCmd.Flags().StringVar(&ingestOpts.Class, "class", string(model.SourceContentLibrary), "source class to record for explicit sources (content_library, examples, local_install, community)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, mgr, st, err := openEnv()
	if err != nil {
		return err
	}
	defer st.Close()

	var sources []cache.Source
	for _, a := range args {
		sources = append(sources, cache.Source{ID: a, Class: model.SourceClass(ingestOpts.Class)})
	}

	if ingestOpts.ScanLocal {
		roots := cfg.HoudiniVersionDirs
		if cfg.HoudiniInstallPath != "" {
			roots = append([]string{cfg.HoudiniInstallPath}, roots...)
		}
		if len(roots) == 0 {
			roots = config.DefaultScanRoots()
		}
		if err := mgr.ScanLocal(roots); err != nil {
			return fmt.Errorf("local scan: %w", err)
		}
	}

	summary, err := ingest.Run(ctx, mgr, st, sources, func(done, total int, identifier string) {
		if identifier == "" {
			return
		}
		ingestLog.Info().Int("done", done+1).Int("total", total).Str("source", identifier).Msg("ingesting")
	})
	if err != nil {
		return err
	}

	ingestLog.Info().Int("parsed", summary.Parsed).Int("failed", summary.Failed).Int("rows", summary.Rows).Msg("ingest complete")
	return nil
}
