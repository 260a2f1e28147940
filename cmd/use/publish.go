package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bymeisam/use/internal/config"
	uerrors "github.com/bymeisam/use/internal/errors"
	"github.com/bymeisam/use/internal/publish"
)

func publishCmd() *cobra.Command {
	var (
		ver      string
		check    bool
		diagnose bool
		dir      string
		jsonOut  bool
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish the module to the registry",
		Long: `Pack the module and upload it to the configured registry.

The registry bucket is laid out as a Go module proxy, so published
versions are immediately fetchable with GOPROXY pointed at it.

Examples:
  use publish --version v0.2.0
  use publish --check --version v0.2.0
  use publish --diagnose`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(dir, ver, check, diagnose, jsonOut)
		},
	}

	cmd.Flags().StringVar(&ver, "version", "", "Version to publish (defaults to the version in use.json)")
	cmd.Flags().BoolVar(&check, "check", false, "Validate without uploading")
	cmd.Flags().BoolVar(&diagnose, "diagnose", false, "Check registry connectivity and exit")
	cmd.Flags().StringVar(&dir, "dir", ".", "Module directory")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the release as JSON")

	return cmd
}

func runPublish(dir, ver string, check, diagnose, jsonOut bool) error {
	cfg, cfgErr := config.Load(dir)
	if ver == "" && cfgErr == nil {
		ver = cfg.Version
	}
	ver = normalizeVersion(ver)

	logger := newLogger()

	if diagnose {
		reg, err := newRegistry(cfg, cfgErr)
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()
		if err := publish.Diagnose(ctx, reg); err != nil {
			return err
		}
		success("registry is reachable")
		return nil
	}

	if ver == "" {
		return uerrors.New("P003").
			WithDetail("no version given").
			WithSuggestion("Pass --version or set version in use.json.")
	}

	// Offline validation only.
	if check {
		pub := publish.New(nil, "", logger)
		modPath, err := pub.Check(dir, ver)
		if err != nil {
			return err
		}
		success("%s@%s is ready to publish", modPath, ver)
		return nil
	}

	reg, err := newRegistry(cfg, cfgErr)
	if err != nil {
		return err
	}
	pub := publish.New(reg, cfg.Registry.Prefix, logger)

	// Handle signals
	ctx, cancel := signalContext()
	defer cancel()

	info("publishing %s from %s", ver, dir)
	rel, err := pub.Publish(ctx, dir, ver)
	if err != nil {
		return err
	}

	if jsonOut {
		out, err := json.MarshalIndent(rel, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	success("published %s@%s (%s)", rel.Path, rel.Version, formatBytes(rel.Size))
	info("GOPROXY consumers can fetch this version now")
	return nil
}

// normalizeVersion accepts bare "1.2.3" versions and gives them the v
// prefix Go modules require.
func normalizeVersion(v string) string {
	if v != "" && !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}

// newRegistry builds the S3 registry from the loaded configuration.
func newRegistry(cfg *config.Config, cfgErr error) (publish.Registry, error) {
	if cfgErr != nil {
		return nil, cfgErr
	}
	if cfg.Registry.Bucket == "" {
		return nil, uerrors.New("C003").
			WithDetail("registry.bucket is empty").
			WithSuggestion("Set registry.bucket in use.json to the S3 bucket that backs the registry.")
	}

	client := publish.NewS3Client(cfg.Registry.Region, cfg.Registry.Endpoint)
	return publish.NewS3Registry(client, cfg.Registry.Bucket), nil
}

// signalContext returns a context cancelled by SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	return ctx, cancel
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
