// Copyright 2019 the Go-FUSE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command ramfsd mounts an in-memory, POSIX-style filesystem at a
// directory using FUSE.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/moby/sys/mountinfo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sys/unix"

	"github.com/ramfsd/ramfs/bridge"
	"github.com/ramfsd/ramfs/internal/config"
	"github.com/ramfsd/ramfs/ramfs"
)

var rootCmd = &cobra.Command{
	Use:   "ramfsd MOUNTPOINT",
	Short: "Mount an in-memory POSIX filesystem over FUSE",
	Args:  cobra.ExactArgs(1),
	RunE:  run,
}

func init() {
	if err := config.BindFlags(rootCmd.Flags()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	viper.SetEnvPrefix("ramfsd")
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	mountPoint := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	cfg.MountPoint = mountPoint

	logger := log.New(os.Stderr, "", log.LstdFlags)
	sessionID := uuid.New()
	logger.Printf("ramfsd: session %s starting, mounting at %s", sessionID, mountPoint)

	fsys := ramfs.NewFilesystem(ramfs.Options{
		RootMode:   0755,
		RootUID:    cfg.UID,
		RootGID:    cfg.GID,
		MaxNameLen: cfg.MaxNameLen,
		Logger:     logger,
	})

	server, err := bridge.Mount(mountPoint, fsys, bridge.MountOptions{
		Debug:    cfg.Debug,
		EntryTTL: cfg.EntryTTL,
		AttrTTL:  cfg.AttrTTL,
	})
	if err != nil {
		return fmt.Errorf("mounting %s: %w", mountPoint, err)
	}
	logger.Printf("ramfsd: session %s mounted", sessionID)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("ramfsd: session %s received %s, unmounting", sessionID, sig)
		shutdown(logger, server, mountPoint)
	}()

	server.Wait()
	fsys.Teardown()
	logger.Printf("ramfsd: session %s exited", sessionID)
	return nil
}

// shutdown tries the graceful go-fuse unmount first; if the kernel
// still reports the directory mounted afterwards (a wedged or slow
// unmount), it falls back to a forced unmount.
func shutdown(logger *log.Logger, server *fuse.Server, mountPoint string) {
	if err := server.Unmount(); err != nil {
		logger.Printf("ramfsd: graceful unmount failed: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	mounted, err := mountinfo.Mounted(mountPoint)
	if err != nil {
		logger.Printf("ramfsd: checking mount state: %v", err)
		return
	}
	if mounted {
		logger.Printf("ramfsd: %s still mounted, forcing unmount", mountPoint)
		if err := unix.Unmount(mountPoint, unix.MNT_FORCE); err != nil {
			logger.Printf("ramfsd: forced unmount failed: %v", err)
		}
	}
}
