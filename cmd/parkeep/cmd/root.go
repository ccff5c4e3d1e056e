package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "parkeep",
	Short: "parkeep keeps cold backup sets verifiable and consistent",
	Long: `parkeep maintains integrity-verifiable cold backup sets: groups of two or
more physically independent drives kept as near-identical replicas of a
tracked file collection.

Each root carries a manifest of tracked files with their content digests,
and par2 recovery data sized to tolerate a configured corruption
percentage. parkeep detects silent bit-rot, keeps the roots of a set
mutually consistent, and classifies whether damaged files can still be
recovered.

Repair is never automatic: verification only ever reports, and repair runs
only when an operator asks for it.

A stale lock marker (` + "`.parkeep.lock`" + `) left by a crashed invocation must be
removed manually before the root can be used again.
`,
}

var config *CLIConfig

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		osExit(1)
	}
}

func init() {
	log.SetFlags(0)
	cobra.OnInitialize(initConfig)

	addRootsFlag(rootCmd)
	addLogLevelFlag(rootCmd)
	addPar2Flag(rootCmd)
	addConcurrencyFlag(rootCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetDefault("loglevel", "info")
	viper.SetDefault("par2", "")
	viper.SetDefault("concurrency", 0)
	if os.Getenv("PARKEEP_CONFIG") != "" {
		viper.SetConfigFile(os.Getenv("PARKEEP_CONFIG"))
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.parkeep")
		viper.AddConfigPath("/etc/parkeep")
		viper.SetConfigName("parkeep")
	}

	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		infoLogger.Println("Using config file:", viper.ConfigFileUsed())
	}
	var err error
	config, err = newConfig()
	if err != nil {
		logFatalln(err)
	}
	config.setRootParams(&params)
}
