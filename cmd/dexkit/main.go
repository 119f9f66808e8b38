// Command dexkit inspects, rewrites and strips DEX containers.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var cmdMain = &cobra.Command{
	Use:   "dexkit",
	Short: "Inspect, rewrite and strip Dalvik executables",
	Run:   printUsageAndExit1,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		var err error
		logger, err = newLogger(cmd.ErrOrStderr(), env.GetString("log-level"), env.GetString("log-format"))
		check(err)
	},
}

var flagMain struct {
	LogLevel  string
	LogFormat string
}

// env resolves flags from DEXKIT_* environment variables when they are not set
// on the command line.
var env = newEnv()

var logger = zerolog.Nop()

func newEnv() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("DEXKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return v
}

func init() {
	flags := cmdMain.PersistentFlags()
	flags.StringVar(&flagMain.LogLevel, "log-level", "warn", "Log level (trace, debug, info, warn, error)")
	flags.StringVar(&flagMain.LogFormat, "log-format", "plain", "Log format (plain, text, json)")
	bindEnv(flags, "log-level", "log-format")
}

// bindEnv binds the named flags of fs to their DEXKIT_* environment variables.
func bindEnv(fs *pflag.FlagSet, names ...string) {
	for _, name := range names {
		check(env.BindPFlag(name, fs.Lookup(name)))
	}
}

func main() {
	_ = cmdMain.Execute()
}

func printUsageAndExit1(cmd *cobra.Command, _ []string) {
	_ = cmd.Usage()
	os.Exit(1)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func check(err error) {
	if err != nil {
		fatalf("%v", err)
	}
}
