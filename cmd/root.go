/*
	Copyright 2023 Markus Papenbrock
*/

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	courseCmd "github.com/mpapenbr/course-split-timer/pkg/cmd/course"
	layoutCmd "github.com/mpapenbr/course-split-timer/pkg/cmd/layout"
	migrateCmd "github.com/mpapenbr/course-split-timer/pkg/cmd/migrate"
	recordCmd "github.com/mpapenbr/course-split-timer/pkg/cmd/record"
	replayCmd "github.com/mpapenbr/course-split-timer/pkg/cmd/replay"
	segCmd "github.com/mpapenbr/course-split-timer/pkg/cmd/seg"
	serveCmd "github.com/mpapenbr/course-split-timer/pkg/cmd/serve"
	"github.com/mpapenbr/course-split-timer/pkg/cmd/util"
	"github.com/mpapenbr/course-split-timer/pkg/config"
	"github.com/mpapenbr/course-split-timer/version"
)

const envPrefix = "CST"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "cst",
	Short:   "Course split timer",
	Long:    `Times runs through a course of box shaped segments and keeps split records.`,
	Version: version.FullVersion,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_, err := util.SetupLogger()
		return err
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.cst.yml)")

	rootCmd.PersistentFlags().StringVar(&config.DataDir, "data-dir",
		defaultDataDir(),
		"directory for course files and layouts")
	rootCmd.PersistentFlags().StringVar(&config.Storage, "storage",
		config.StorageFile,
		"course storage (file, sqlite, postgres)")
	rootCmd.PersistentFlags().StringVar(&config.SQLiteFile, "sqlite-file",
		"",
		"sqlite database file (default is <data-dir>/courses.db)")
	rootCmd.PersistentFlags().StringVar(&config.DB, "db",
		"postgresql://DB_USERNAME:DB_USER_PASSWORD@DB_HOST:5432/cst",
		"Connection string for the database")
	rootCmd.PersistentFlags().StringVar(&config.WaitForServices,
		"wait-for-services",
		"15s",
		"Duration to wait for other services to be ready")
	rootCmd.PersistentFlags().StringVar(&config.LogLevel,
		"log-level",
		"info",
		"controls the log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().StringVar(&config.SQLLogLevel,
		"sql-log-level",
		"info",
		"controls the log level for sql methods")
	rootCmd.PersistentFlags().StringVar(&config.LogFormat,
		"log-format",
		"text",
		"controls the log output format (json, text)")
	rootCmd.PersistentFlags().StringVar(&config.LogFilter,
		"log-filter",
		"",
		"zapfilter rules, e.g. \"*:* -debug:broadcast.*\"")

	// add commands here
	rootCmd.AddCommand(migrateCmd.NewMigrateCmd())
	rootCmd.AddCommand(courseCmd.NewCourseCmd())
	rootCmd.AddCommand(segCmd.NewSegCmd())
	rootCmd.AddCommand(recordCmd.NewRecordCmd())
	rootCmd.AddCommand(layoutCmd.NewLayoutCmd())
	rootCmd.AddCommand(replayCmd.NewReplayCmd())
	rootCmd.AddCommand(serveCmd.NewServeCmd())
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".cst"
	}
	return filepath.Join(dir, "cst")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".cst" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".cst")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	bindAll(rootCmd, viper.GetViper())
}

func bindAll(cmd *cobra.Command, v *viper.Viper) {
	bindFlags(cmd, v)
	for _, sub := range cmd.Commands() {
		bindAll(sub, v)
	}
}

// Bind each cobra flag to its associated viper configuration
// (config file and environment variable)
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// Environment variables can't have dashes in them, so bind them to their
		// equivalent keys with underscores, e.g. --data-dir to CST_DATA_DIR
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name,
				fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				fmt.Fprintf(os.Stderr, "Could not bind env var %s: %v", f.Name, err)
			}
		}
		// Apply the viper config value to the flag when the flag is not set and viper
		// has a value
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				fmt.Fprintf(os.Stderr, "Could set flag value for %s: %v", f.Name, err)
			}
		}
	})
}
