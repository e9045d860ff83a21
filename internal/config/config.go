// Package config resolves the environment options listed in SPEC_FULL.md
// into a single struct with defaults applied, the same env-var-first,
// default-second resolution the teacher uses for AWS credentials in
// pkg/storage/s3.go's getAWSConfig.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
)

const (
	defaultCacheMaxBytes = 2 << 30 // 2 GiB
	defaultAggregateTTL  = 30 * time.Second
)

// Config is the fully-resolved set of environment-driven options.
type Config struct {
	CacheDir           string
	CacheMaxBytes      int64
	HoudiniInstallPath string
	HoudiniVersionDirs []string
	StorePath          string
	AggregateCacheTTL  time.Duration
	UserAgent          string
	S3Endpoint         string
	S3ForcePathStyle   bool
}

// Load reads environment variables and fills in defaults for anything
// unset, mirroring the teacher's tolerant-of-missing-env resolution.
func Load() (Config, error) {
	cfg := Config{
		CacheMaxBytes:     defaultCacheMaxBytes,
		AggregateCacheTTL: defaultAggregateTTL,
		UserAgent:         "hipindex-crawler/1.0 (+https://example.invalid/hipindex)",
	}

	if v := os.Getenv("CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	} else {
		home, err := homedir.Dir()
		if err != nil {
			home = os.TempDir()
		}
		cfg.CacheDir = home + "/.cache/hipindex"
	}

	if v := os.Getenv("CACHE_MAX_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err == nil && n > 0 {
			cfg.CacheMaxBytes = n
		}
	}

	cfg.HoudiniInstallPath = os.Getenv("HOUDINI_INSTALL_PATH")

	if v := os.Getenv("HOUDINI_VERSION_DIRS"); v != "" {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				cfg.HoudiniVersionDirs = append(cfg.HoudiniVersionDirs, part)
			}
		}
	}

	if v := os.Getenv("STORE_PATH"); v != "" {
		cfg.StorePath = v
	} else {
		home, err := homedir.Dir()
		if err != nil {
			home = os.TempDir()
		}
		cfg.StorePath = home + "/.local/share/hipindex/hipindex.db"
	}

	if v := os.Getenv("HIPINDEX_AGGREGATE_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.AggregateCacheTTL = d
		}
	}

	cfg.S3Endpoint = os.Getenv("HIPINDEX_S3_ENDPOINT")
	cfg.S3ForcePathStyle = os.Getenv("HIPINDEX_S3_FORCE_PATH_STYLE") == "1"

	return cfg, nil
}

// DefaultScanRoots returns the conventional install locations to fall
// back to when neither HOUDINI_INSTALL_PATH nor HOUDINI_VERSION_DIRS is
// set, per spec.md section 4.4's "local scan" mode.
func DefaultScanRoots() []string {
	home, _ := homedir.Dir()
	roots := []string{
		"/opt/hfs*",
		"C:/Program Files/Side Effects Software",
	}
	if home != "" {
		roots = append(roots, home+"/Library/Preferences/houdini")
	}
	return roots
}
