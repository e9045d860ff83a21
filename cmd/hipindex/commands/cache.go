package commands

import (
	"github.com/houdini-kb/hipindex/internal/config"
	"github.com/houdini-kb/hipindex/internal/hiplog"
	"github.com/spf13/cobra"
)

var cacheLog = hiplog.For("cli.cache")

var CacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or populate the local archive cache",
}

var CacheScanCmd = &cobra.Command{
	Use:   "scan-local",
	Short: "Enumerate .hip/.hipnc files from the local Houdini install into the cache manifest",
	RunE:  runCacheScan,
}

func init() {
	CacheCmd.AddCommand(CacheScanCmd)
}

func runCacheScan(cmd *cobra.Command, args []string) error {
	cfg, mgr, st, err := openEnv()
	if err != nil {
		return err
	}
	defer st.Close()

	roots := cfg.HoudiniVersionDirs
	if cfg.HoudiniInstallPath != "" {
		roots = append([]string{cfg.HoudiniInstallPath}, roots...)
	}
	if len(roots) == 0 {
		roots = config.DefaultScanRoots()
	}

	if err := mgr.ScanLocal(roots); err != nil {
		return err
	}

	cacheLog.Info().Strs("roots", roots).Msg("local scan complete")
	return nil
}
