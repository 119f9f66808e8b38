package main

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/arloliu/dexkit"
	"github.com/arloliu/dexkit/codestore"
	"github.com/arloliu/dexkit/dex"
	"github.com/arloliu/dexkit/format"
)

var cmdNativize = &cobra.Command{
	Use:   "nativize <in.dex> <out.dex>",
	Short: "Strip the code of the given methods and mark them native",
	Long: `Strip the code of the given methods and mark them native.

Methods are named as Lpkg/Cls;->name, which matches every overload, or with a
full signature such as Lpkg/Cls;->name(I)V. With --store the removed code items
are archived under their method signatures.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		check(runNativize(cmd, args[0], args[1]))
	},
}

var flagNativize struct {
	Methods []string
	Store   string
}

func init() {
	cmdMain.AddCommand(cmdNativize)

	flags := cmdNativize.Flags()
	flags.StringSliceVarP(&flagNativize.Methods, "method", "m", nil, "Method to strip (repeatable)")
	flags.StringVar(&flagNativize.Store, "store", "", "Write the stripped code to this code store")
	flags.String("compression", "zstd", "Code store compression (none, zstd, s2, lz4)")
	bindEnv(flags, "compression")
	check(cmdNativize.MarkFlagRequired("method"))
}

func runNativize(cmd *cobra.Command, in, out string) error {
	c, err := dex.Open(in, dex.WithLogger(logger))
	if err != nil {
		return err
	}

	var store *codestore.Writer
	if flagNativize.Store != "" {
		compression, err := format.ParseCompressionType(env.GetString("compression"))
		if err != nil {
			return err
		}
		store, err = codestore.NewWriter(codestore.WithCompression(compression), codestore.WithLogger(logger))
		if err != nil {
			return err
		}
		if err := store.AddKeyValue("source", filepath.Base(in)); err != nil {
			return err
		}
	}

	report, err := dexkit.Nativize(c, flagNativize.Methods, store)
	if err != nil {
		return err
	}
	for _, sig := range report.Skipped {
		logger.Warn().Str("method", sig).Msg("no code to strip")
	}
	if err := c.WriteFile(out); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "stripped %d method(s), %s of code\n", len(report.Methods), humanize.IBytes(uint64(report.CodeBytes))) //nolint:gosec
	if store == nil {
		return nil
	}
	if err := store.WriteFile(flagNativize.Store); err != nil {
		return err
	}
	stats := store.Stats()
	fmt.Fprintf(w, "code store %s: %s compressed to %s (%s)\n", flagNativize.Store,
		humanize.IBytes(uint64(stats.OriginalSize)), humanize.IBytes(uint64(stats.CompressedSize)), stats.Algorithm) //nolint:gosec

	return nil
}
