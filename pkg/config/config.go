// Package config holds the file-backed settings for the daemon and the
// compare workflow. Settings live in a JSON file with pointer fields so a
// partial file overrides only what it names; everything else takes the
// default.
package config

import (
	"encoding/json"
	"os"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// RawFileConfig is the JSON shape of the config file. Nil fields fall back
// to defaults.
type RawFileConfig struct {
	ListenAddr     *string  `json:"listenAddr,omitempty"`
	NoiseFloorDB   *float64 `json:"noiseFloorDB,omitempty"`
	MaxMagnitudeSS *float64 `json:"maxMagnitudeSS,omitempty"`
	MaxPhaseDeg    *float64 `json:"maxPhaseDeg,omitempty"`
	LoadGamma      *float64 `json:"loadGamma,omitempty"`
}

var defaultFileConfig = RawFileConfig{
	ListenAddr:     ptrTo(":9001"),
	NoiseFloorDB:   ptrTo(-70.0),
	MaxMagnitudeSS: ptrTo(5.0),
	MaxPhaseDeg:    ptrTo(5.0),
	LoadGamma:      ptrTo(0.0),
}

func ptrTo[T any](v T) *T { return &v }

// File is a config backed by a JSON file on disk.
type File struct {
	c        RawFileConfig
	mu       sync.RWMutex
	filepath string
}

// NewFile loads (or initializes) a config at configPath. A missing file is
// not an error: defaults apply and a warning is logged.
func NewFile(configPath string) (*File, error) {
	f := &File{filepath: configPath}
	if err := f.Load(); err != nil {
		return nil, err
	}
	return f, nil
}

// Load reads the file into memory. A missing file leaves defaults.
func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, err := os.ReadFile(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			logrus.Warnf("config file %s does not exist, using defaults", f.filepath)
			f.c = RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to read config")
	}
	var raw RawFileConfig
	if err := json.Unmarshal(b, &raw); err != nil {
		return pkgerrors.Wrapf(err, "failed to parse config")
	}
	f.c = raw
	return nil
}

// Save writes the current settings back to disk.
func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	b, err := json.MarshalIndent(f.c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.filepath, b, 0644)
}

func orDefault[T any](v, d *T) T {
	if v != nil {
		return *v
	}
	return *d
}

// ListenAddr is the daemon listen address.
func (f *File) ListenAddr() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return orDefault(f.c.ListenAddr, defaultFileConfig.ListenAddr)
}

// NoiseFloorDB is the transmission validity floor for comparisons.
func (f *File) NoiseFloorDB() float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return orDefault(f.c.NoiseFloorDB, defaultFileConfig.NoiseFloorDB)
}

// MaxMagnitudeSS is the magnitude error budget for comparisons.
func (f *File) MaxMagnitudeSS() float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return orDefault(f.c.MaxMagnitudeSS, defaultFileConfig.MaxMagnitudeSS)
}

// MaxPhaseDeg is the phase error limit for comparisons.
func (f *File) MaxPhaseDeg() float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return orDefault(f.c.MaxPhaseDeg, defaultFileConfig.MaxPhaseDeg)
}

// LoadGamma is the residual reflection assumed for the matched-load ideal.
// Zero is valid; the engines never divide by it.
func (f *File) LoadGamma() float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return orDefault(f.c.LoadGamma, defaultFileConfig.LoadGamma)
}
