package main

import (
	"github.com/spf13/cobra"

	"github.com/arloliu/dexkit/dex"
)

var cmdRewrite = &cobra.Command{
	Use:   "rewrite <in.dex> <out.dex>",
	Short: "Parse a DEX file and write it back with a normalized layout",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		check(runRewrite(args[0], args[1]))
	},
}

func init() {
	cmdMain.AddCommand(cmdRewrite)
	cmdRewrite.Flags().Bool("verify-checksum", false, "Reject input whose checksum or signature does not match")
	bindEnv(cmdRewrite.Flags(), "verify-checksum")
}

func runRewrite(in, out string) error {
	c, err := dex.Open(in, dex.WithLogger(logger), dex.WithVerifyChecksum(env.GetBool("verify-checksum")))
	if err != nil {
		return err
	}
	if err := c.WriteFile(out); err != nil {
		return err
	}
	header := c.Header()
	logger.Info().Str("in", in).Str("out", out).Uint32("size", header.FileSize).Msg("rewrote")

	return nil
}
