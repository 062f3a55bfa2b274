// Copyright 2019 the Go-FUSE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config binds ramfsd's command-line flags to a typed
// configuration struct via viper, so flags and environment variables
// (RAMFSD_*) feed the same values. No config file is read.
package config

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds every setting ramfsd needs once argument parsing is
// done.
type Config struct {
	Debug      bool          `mapstructure:"debug"`
	Foreground bool          `mapstructure:"foreground"`
	UID        uint32        `mapstructure:"uid"`
	GID        uint32        `mapstructure:"gid"`
	EntryTTL   time.Duration `mapstructure:"entry-ttl"`
	AttrTTL    time.Duration `mapstructure:"attr-ttl"`
	MaxNameLen int           `mapstructure:"max-name-len"`
	MountPoint string        `mapstructure:"-"`
}

// BindFlags registers ramfsd's flags on flagSet and binds each one
// into viper under the same name, so Load can later produce a Config
// that reflects flags and RAMFSD_-prefixed environment variables, in
// that order of precedence.
func BindFlags(flagSet *pflag.FlagSet) error {
	flagSet.Bool("debug", false, "log every FUSE request and reply")
	flagSet.Bool("foreground", false, "do not daemonize; run attached to the terminal")
	flagSet.Uint32("uid", 0, "owner uid for the root directory")
	flagSet.Uint32("gid", 0, "owner gid for the root directory")
	flagSet.Duration("entry-ttl", time.Second, "kernel dentry cache timeout")
	flagSet.Duration("attr-ttl", time.Second, "kernel attribute cache timeout")
	flagSet.Int("max-name-len", 255, "maximum directory entry name length")

	for _, name := range []string{"debug", "foreground", "uid", "gid", "entry-ttl", "attr-ttl", "max-name-len"} {
		if err := viper.BindPFlag(name, flagSet.Lookup(name)); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the bound values back out of viper into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
