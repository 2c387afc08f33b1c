/*
 * norisc - optional TOML configuration: diagnostics verbosity, log
 * destination, and an override for where the inner-core image lives.
 *
 * Copyright 2026, the norisc authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package config loads the emulator's optional host-side configuration
// file. None of it is guest-visible: it only tunes diagnostics and where
// the loader looks for the inner-core image. Absence of the file is not
// an error; Load falls back to Default.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// FileEnvVar overrides the default config file path when set.
const FileEnvVar = "NORISC_CONFIG"

// DefaultFile is the config file name consulted when FileEnvVar is unset.
const DefaultFile = "norisc.toml"

// Diagnostics controls the verbosity and destination of host diagnostics.
type Diagnostics struct {
	Trace   bool   `toml:"trace"`
	LogFile string `toml:"log_file"`
}

// Boot controls where the boot loader looks for the inner-core image.
type Boot struct {
	Image string `toml:"image"`
}

// Config is the full set of host-side knobs.
type Config struct {
	Diagnostics Diagnostics `toml:"diagnostics"`
	Boot        Boot        `toml:"boot"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{}
}

// path returns the config file to try: NORISC_CONFIG if set, else
// DefaultFile.
func path() string {
	if p := os.Getenv(FileEnvVar); p != "" {
		return p
	}
	return DefaultFile
}

// Load reads the TOML config file, returning Default() unchanged if it
// does not exist. Any other read or parse error is returned.
func Load() (Config, error) {
	cfg := Default()
	p := path()
	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if _, err := toml.DecodeFile(p, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
