// Copyright 2022 The stampede Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	// DefaultFileName is the name of the configuration file Resolver
	// searches for.
	DefaultFileName = "stampede.yml"
	// EnvVar is the environment variable that, when set, names the
	// configuration file to use instead of searching for one.
	EnvVar = "STAMPEDE_CONFIG"
)

// A ParseError reports a configuration file that was found but could
// not be read or decoded.
type ParseError struct {
	// Path is the path of the offending file.
	Path string
	// Err is the underlying read or decode error.
	Err error
}

func (err *ParseError) Error() string {
	return fmt.Sprintf("stampede/config: invalid config file %s: %v", err.Path, err.Err)
}

func (err *ParseError) Unwrap() error {
	return err.Err
}

// A Resolver produces a Config from an explicit value, a configuration
// file, or the built-in defaults, in that order of preference.
//
// The zero value is ready to use and works against the real file
// system. The fields exist to let tests observe and control every
// access the resolver makes.
type Resolver struct {
	// Fs is the file system searched. If nil, the operating system's
	// file system is used.
	Fs afero.Fs
	// FileName is the file name searched for. If empty, DefaultFileName
	// is used.
	FileName string
	// HomeDir returns the user's home directory, searched after the
	// search root and its ancestors. If nil, os.UserHomeDir is used.
	// An error skips the home directory.
	HomeDir func() (string, error)
	// Getwd returns the directory a search starts from when no search
	// root is given. If nil, os.Getwd is used.
	Getwd func() (string, error)
	// LookupEnv reads environment variables. If nil, os.LookupEnv is
	// used.
	LookupEnv func(key string) (string, bool)
}

// Load resolves the configuration of the current process: the file
// named by EnvVar, else the nearest stampede.yml above the working
// directory or in the home directory, else Default().
func Load() (Config, error) {
	var r Resolver
	return r.Resolve(nil, "")
}

// Parse reads and decodes the configuration file at path. Any failure
// is returned as a *ParseError.
func Parse(fs afero.Fs, path string) (Config, error) {
	f, err := fs.Open(path)
	if err != nil {
		return Config{}, &ParseError{Path: path, Err: err}
	}
	defer func() {
		_ = f.Close()
	}()

	c, err := Decode(f)
	if err != nil {
		return Config{}, &ParseError{Path: path, Err: err}
	}

	return c, nil
}

// A source yields a Config, or nil if it has none to offer.
type source func() (*Config, error)

// Resolve returns the configuration to use.
//
// If explicit is not nil, *explicit is returned as is and the file
// system is never touched; it is only checked with Validate. Otherwise
// the file named by EnvVar is used if that variable is set. Otherwise
// the resolver looks for a configuration file in searchRoot (the
// working directory if empty), then in each of its ancestors up to the
// file system root, then in the home directory, and uses the first
// regular file it finds. If no file is found, Default() is returned.
//
// A file that is found but cannot be decoded, and an EnvVar naming a
// file that does not exist, produce a *ParseError. The defaults are
// never substituted for a broken file.
func (r *Resolver) Resolve(explicit *Config, searchRoot string) (Config, error) {
	sources := []source{
		func() (*Config, error) { return explicit, nil },
		r.fromEnv,
		func() (*Config, error) { return r.fromSearch(searchRoot) },
		func() (*Config, error) { c := Default(); return &c, nil },
	}

	for _, s := range sources {
		c, err := s()
		if err != nil {
			return Config{}, err
		}
		if c == nil {
			continue
		}
		if err = c.Validate(); err != nil {
			return Config{}, err
		}
		return *c, nil
	}

	panic("stampede/config: no source produced a config")
}

// Find returns the path of the configuration file the search starting
// at searchRoot would use, or the empty string if there is none. The
// EnvVar override is not consulted.
func (r *Resolver) Find(searchRoot string) (string, error) {
	dir := searchRoot
	if dir == "" {
		wd, err := r.getwd()
		if err != nil {
			return "", fmt.Errorf("stampede/config: no search root: %w", err)
		}
		dir = wd
	}
	dir = filepath.Clean(dir)

	name := r.fileName()
	for {
		path := filepath.Join(dir, name)
		if r.isFile(path) {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if home, err := r.homeDir(); err == nil && home != "" {
		path := filepath.Join(home, name)
		if r.isFile(path) {
			return path, nil
		}
	}

	return "", nil
}

func (r *Resolver) fromEnv() (*Config, error) {
	path, ok := r.lookupEnv(EnvVar)
	if !ok || path == "" {
		return nil, nil
	}
	if !r.isFile(path) {
		return nil, &ParseError{Path: path, Err: os.ErrNotExist}
	}

	c, err := Parse(r.fs(), path)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Resolver) fromSearch(searchRoot string) (*Config, error) {
	path, err := r.Find(searchRoot)
	if err != nil || path == "" {
		return nil, err
	}

	c, err := Parse(r.fs(), path)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Resolver) isFile(path string) bool {
	fi, err := r.fs().Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

func (r *Resolver) fs() afero.Fs {
	if r.Fs == nil {
		return afero.NewOsFs()
	}
	return r.Fs
}

func (r *Resolver) fileName() string {
	if r.FileName == "" {
		return DefaultFileName
	}
	return r.FileName
}

func (r *Resolver) homeDir() (string, error) {
	if r.HomeDir == nil {
		return os.UserHomeDir()
	}
	return r.HomeDir()
}

func (r *Resolver) getwd() (string, error) {
	if r.Getwd == nil {
		return os.Getwd()
	}
	return r.Getwd()
}

func (r *Resolver) lookupEnv(key string) (string, bool) {
	if r.LookupEnv == nil {
		return os.LookupEnv(key)
	}
	return r.LookupEnv(key)
}
