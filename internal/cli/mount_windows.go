//go:build windows

package cli

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/greatbody/encoding-util/internal/vfs"
	"github.com/greatbody/encoding-util/transcoder"
)

func runMount(cmd *cobra.Command, opts *options) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	svc, err := cfg.Service()
	if err != nil {
		return err
	}

	filter := vfs.NewFilter(cfg.AllowedProcesses, cfg.AllowedExtensions)
	fs := vfs.NewProxyFS(cfg.PhysicalPath, filter, transcoder.NewConverter(svc))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Mounting %s to %s (backend %s)", cfg.PhysicalPath, cfg.MountPoint, cfg.Backend)
	if err := vfs.Serve(ctx, fs, cfg.MountPoint); err != nil {
		log.Printf("Dokan error: %v", err)
		return err
	}
	log.Printf("Unmounted %s", cfg.MountPoint)
	return nil
}
