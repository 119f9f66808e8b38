package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arloliu/dexkit/dex"
	"github.com/arloliu/dexkit/errs"
	"github.com/arloliu/dexkit/section"
)

var cmdVerify = &cobra.Command{
	Use:   "verify <file.dex>",
	Short: "Check the header, checksum and signature of a DEX file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		check(runVerify(cmd.OutOrStdout(), args[0]))
	},
}

func init() {
	cmdMain.AddCommand(cmdVerify)
}

type verifyResult struct {
	Check  string
	Err    error
	Detail string
}

// verify runs every check against data. Later checks are skipped once the
// header cannot be read.
func verify(data []byte) []verifyResult {
	var results []verifyResult

	header, err := section.ParseHeader(data)
	results = append(results, verifyResult{Check: "header", Err: err})
	if err != nil {
		return results
	}

	var sizeErr error
	if int(header.FileSize) != len(data) {
		sizeErr = fmt.Errorf("%w: header says %d bytes, file has %d", errs.ErrStructuralInconsistency, header.FileSize, len(data))
	}
	results = append(results, verifyResult{Check: "file size", Err: sizeErr})
	results = append(results, verifyResult{Check: "checksum", Err: dex.VerifyChecksums(data)})

	c, err := dex.Parse(data, dex.WithLogger(logger))
	results = append(results, verifyResult{Check: "parse", Err: err})
	if err != nil {
		return results
	}

	first, err := rewriteStable(c)
	detail := ""
	if err == nil && bytes.Equal(first, data) {
		detail = "already normalized"
	}
	results = append(results, verifyResult{Check: "rewrite", Err: err, Detail: detail})

	return results
}

// rewriteStable writes c, parses the output and checks that writing it again
// reproduces the same bytes.
func rewriteStable(c *dex.Container) ([]byte, error) {
	first, err := c.Write()
	if err != nil {
		return nil, err
	}
	again, err := dex.Parse(first)
	if err != nil {
		return nil, err
	}
	second, err := again.Write()
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(first, second) {
		return nil, fmt.Errorf("%w: rewrite is not stable", errs.ErrStructuralInconsistency)
	}

	return first, nil
}

func runVerify(out io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrIO, err)
	}

	failed := 0
	for _, r := range verify(data) {
		switch {
		case r.Err != nil:
			failed++
			fmt.Fprintf(out, "%-10s %s  %v\n", r.Check, color.RedString("FAIL"), r.Err)
		case r.Detail != "":
			fmt.Fprintf(out, "%-10s %s  %s\n", r.Check, color.GreenString("OK"), r.Detail)
		default:
			fmt.Fprintf(out, "%-10s %s\n", r.Check, color.GreenString("OK"))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%s: %d check(s) failed", path, failed)
	}

	return nil
}
