// cmd/config.go
package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// runDefaults holds defaults for `run` flags loaded from an optional
// --config file, so repeated invocations against the same model don't
// need every flag spelled out on the command line.
type runDefaults struct {
	Model          string `yaml:"model"`
	Runs           int    `yaml:"runs"`
	Seed           int64  `yaml:"seed"`
	MaxTasksPerRun int    `yaml:"max_tasks_per_run"`
	LogLevel       string `yaml:"log_level"`
}

// loadRunDefaults reads a YAML defaults file. A missing path is not an
// error: it just means no defaults are applied and flags/their zero
// values stand as-is.
func loadRunDefaults(path string) (runDefaults, error) {
	var d runDefaults
	if path == "" {
		return d, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return d, err
	}
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return d, err
	}
	return d, nil
}

// applyRunDefaults fills any flag the caller left unset from d. Flags
// explicitly set on the command line always win.
func applyRunDefaults(flags *pflag.FlagSet, d runDefaults) {
	if d.Model != "" && !flags.Changed("model") {
		modelPath = d.Model
	}
	if d.Runs != 0 && !flags.Changed("runs") {
		runs = d.Runs
	}
	if d.Seed != 0 && !flags.Changed("seed") {
		seed = d.Seed
	}
	if d.MaxTasksPerRun != 0 && !flags.Changed("max-tasks") {
		maxTasksPerRun = d.MaxTasksPerRun
	}
	if d.LogLevel != "" && !flags.Changed("log") {
		logLevel = d.LogLevel
	}
	if d.LogLevel != "" {
		logrus.Debugf("applied log level %q from config defaults", d.LogLevel)
	}
}
