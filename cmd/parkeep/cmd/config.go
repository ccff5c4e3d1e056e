package cmd

import (
	"github.com/spf13/viper"
)

// CLIConfig describes the CLI configuration read from the optional
// parkeep.yaml config file and environment
type CLIConfig struct {
	// LogLevel is one of debug, info, none
	LogLevel string `json:"loglevel" yaml:"loglevel"`
	// Par2 is an explicit path to the par2 executable
	Par2 string `json:"par2" yaml:"par2"`
	// Concurrency caps how many roots are processed in parallel (0: one worker per root)
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

func newConfig() (*CLIConfig, error) {
	var config CLIConfig
	err := viper.Unmarshal(&config)
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// setRootParams fills flag defaults from the config file; explicit flags win
func (c *CLIConfig) setRootParams(flags *flagsT) {
	if flags.root.logLevel == "" {
		flags.root.logLevel = c.LogLevel
	}
	if flags.root.par2Path == "" {
		flags.root.par2Path = c.Par2
	}
	if flags.root.concurrency == 0 {
		flags.root.concurrency = c.Concurrency
	}
}
