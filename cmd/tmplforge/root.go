// Command tmplforge compiles templates into Go source implementing
// their rendering methods ahead of time. Grounded on
// panyam-templar/cmd/templar/root.go's cobra+viper scaffold: a
// persistent --config flag, a config file searched for in the working
// directory and the user's XDG config dir, and TMPLFORGE_-prefixed
// environment variable overrides.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "tmplforge",
	Short: "tmplforge compiles templates to Go rendering code",
	Long: `tmplforge reads a manifest of template structs and generates, for
each one, a Go source file implementing RenderInto/Render/String
methods that render the template without parsing it at request time.

Configuration file locations (in order of precedence):
  1. --config flag
  2. tmplforge.yaml in the current directory
  3. ~/.config/tmplforge/config.yaml`,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is tmplforge.yaml)")
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if _, err := os.Stat("tmplforge.yaml"); err == nil {
		viper.SetConfigFile("tmplforge.yaml")
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.SetConfigFile(filepath.Join(home, ".config", "tmplforge", "config.yaml"))
	}
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("TMPLFORGE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
