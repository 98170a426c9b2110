// Copyright (c) 2025 BVK Chaitanya

// Package db implements subcommands to inspect the daemon's database
// over its "/db/" http handler.
package db

import (
	"flag"
	"path"

	"github.com/bvk/broker/subcmds/cmdutil"
	"github.com/bvkgo/kv"
	"github.com/bvkgo/kv/kvhttp"
)

type Flags struct {
	cmdutil.ClientFlags

	dbURLPath string
}

func (f *Flags) SetFlags(fset *flag.FlagSet) {
	f.ClientFlags.SetFlags(fset)
	fset.StringVar(&f.dbURLPath, "db-url-path", "/db", "path to db api handler")
}

func (f *Flags) GetDatabase() kv.Database {
	addrURL := f.AddressURL()
	addrURL.Path = path.Join(addrURL.Path, f.dbURLPath)
	return kvhttp.New(addrURL, f.HttpClient())
}
