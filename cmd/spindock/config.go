/*
 * config.go, part of spindock.
 *
 * Copyright 2024 Raul Mera <rmera{at}usachDOTcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	dock "github.com/rmera/spindock"
)

//envPrefix is the prefix of the environment variables that override the
//configuration, as in SPINDOCK_DOCKING_TOP_K.
const envPrefix = "SPINDOCK"

//LogConfig selects the level and the encoding (console or json) of the log.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

//OutputConfig controls what the dock command writes besides the pose report.
type OutputConfig struct {
	//Number of transformed ligand structures written.
	Structures int    `mapstructure:"structures" yaml:"structures"`
	Dir        string `mapstructure:"dir" yaml:"dir"`
	PlotBins   int    `mapstructure:"plot_bins" yaml:"plot_bins"`
}

//Config is the whole configuration of the program.
type Config struct {
	Docking *dock.Options `mapstructure:"docking" yaml:"docking"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
}

//DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Docking: dock.DefaultOptions(),
		Log:     LogConfig{Level: "info", Format: "console"},
		Output:  OutputConfig{Structures: 10, Dir: ".", PlotBins: 30},
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

//LoadConfig returns the defaults, overridden by the YAML file fname (if not
//empty) and then by SPINDOCK_* environment variables. The result is validated.
func LoadConfig(fname string) (*Config, error) {
	v := newViper()
	def, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return nil, err
	}
	//the defaults are read as a config so every key is known to AutomaticEnv.
	if err := v.ReadConfig(bytes.NewReader(def)); err != nil {
		return nil, err
	}
	if fname != "" {
		v.SetConfigFile(fname)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %q: %w", fname, err)
		}
	}
	C := new(Config)
	if err := v.Unmarshal(C); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := C.Validate(); err != nil {
		return nil, err
	}
	return C, nil
}

//Validate checks the docking options and the logging and output settings.
func (C *Config) Validate() error {
	if C.Docking == nil {
		return dock.NewError(dock.BadOptions, "no docking options", true, "Config.Validate")
	}
	if err := C.Docking.Validate(); err != nil {
		return dock.ErrDecorate(err, "Config.Validate")
	}
	if _, err := zapcore.ParseLevel(C.Log.Level); err != nil {
		return dock.NewError(dock.BadOptions, err.Error(), true, "Config.Validate")
	}
	if f := C.Log.Format; f != "console" && f != "json" {
		return dock.NewError(dock.BadOptions, fmt.Sprintf("log format must be console or json, got %q", f), true, "Config.Validate")
	}
	if C.Output.Structures < 0 || C.Output.PlotBins < 1 {
		return dock.NewError(dock.BadOptions, fmt.Sprintf("need structures >= 0 and plot_bins > 0, got %d and %d", C.Output.Structures, C.Output.PlotBins), true, "Config.Validate")
	}
	return nil
}

//YAML returns the configuration as a YAML document.
func (C *Config) YAML() ([]byte, error) {
	return yaml.Marshal(C)
}

//Logger builds the zap logger described by the configuration. The json
//format gives a production logger, console a development one. Both write
//to standard error.
func (C *Config) Logger() (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(C.Log.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewDevelopmentConfig()
	if C.Log.Format == "json" {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}
