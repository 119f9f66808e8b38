package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/dexkit/dex"
	"github.com/arloliu/dexkit/format"
)

var cmdInfo = &cobra.Command{
	Use:   "info <file.dex>",
	Short: "Print the header, sections and classes of a DEX file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		check(runInfo(cmd.OutOrStdout(), args[0], flagInfo.YAML))
	},
}

var flagInfo struct {
	YAML bool
}

func init() {
	cmdMain.AddCommand(cmdInfo)
	cmdInfo.Flags().BoolVar(&flagInfo.YAML, "yaml", false, "Print the report as YAML")
}

type infoReport struct {
	File      string        `yaml:"file"`
	Version   string        `yaml:"version"`
	FileSize  uint32        `yaml:"fileSize"`
	Checksum  string        `yaml:"checksum"`
	Signature string        `yaml:"signature"`
	Sections  []sectionInfo `yaml:"sections"`
	Classes   []classInfo   `yaml:"classes"`
}

type sectionInfo struct {
	Type   string `yaml:"type"`
	Count  uint32 `yaml:"count"`
	Offset uint32 `yaml:"offset"`
}

type classInfo struct {
	Name       string `yaml:"name"`
	SourceFile string `yaml:"sourceFile,omitempty"`
	Methods    int    `yaml:"methods"`
	Native     int    `yaml:"native,omitempty"`
}

func buildInfo(name string, c *dex.Container) (*infoReport, error) {
	h := c.Header()
	report := &infoReport{
		File:      name,
		Version:   strings.TrimRight(string(h.Magic[4:]), "\x00"),
		FileSize:  h.FileSize,
		Checksum:  fmt.Sprintf("%08x", h.Checksum),
		Signature: fmt.Sprintf("%x", h.Signature),
	}

	for _, sec := range c.Registry().Sections() {
		report.Sections = append(report.Sections, sectionInfo{Type: sec.Type.String(), Count: sec.Count, Offset: sec.Offset})
	}

	for _, def := range c.ClassDefs() {
		className, err := c.TypeName(def.ClassIdx)
		if err != nil {
			return nil, err
		}
		info := classInfo{Name: className, SourceFile: c.SourceFile(def)}
		if def.ClassData != nil {
			for m := range def.ClassData.Methods() {
				info.Methods++
				if m.AccessFlags.Has(format.AccNative) {
					info.Native++
				}
			}
		}
		report.Classes = append(report.Classes, info)
	}

	return report, nil
}

func runInfo(out io.Writer, path string, asYAML bool) error {
	c, err := dex.Open(path, dex.WithLogger(logger))
	if err != nil {
		return err
	}
	report, err := buildInfo(path, c)
	if err != nil {
		return err
	}

	if asYAML {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}

		return enc.Close()
	}

	tw := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "File\t%s\n", report.File)
	fmt.Fprintf(tw, "Version\t%s\n", report.Version)
	fmt.Fprintf(tw, "Size\t%s\n", humanize.IBytes(uint64(report.FileSize)))
	fmt.Fprintf(tw, "Checksum\t%s\n", report.Checksum)
	fmt.Fprintf(tw, "Signature\t%s\n", report.Signature)
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "SECTION\tCOUNT\tOFFSET")
	for _, s := range report.Sections {
		fmt.Fprintf(tw, "%s\t%s\t0x%08x\n", s.Type, humanize.Comma(int64(s.Count)), s.Offset)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "CLASS\tMETHODS\tNATIVE\tSOURCE")
	for _, cls := range report.Classes {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", cls.Name, cls.Methods, cls.Native, cls.SourceFile)
	}

	return tw.Flush()
}
