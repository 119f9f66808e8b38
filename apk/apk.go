// Package apk locates and parses the DEX containers packaged in an Android APK.
//
// An APK is a zip archive. The runtime loads classes.dex first and then
// classes2.dex, classes3.dex and so on; entries elsewhere in the archive are
// ignored.
package apk

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zip"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/dexkit/dex"
	"github.com/arloliu/dexkit/errs"
)

// maxPrealloc caps the buffer reserved from the size an entry claims.
const maxPrealloc = 64 << 20

// Entry describes one DEX file stored in an APK.
type Entry struct {
	Name  string
	Size  uint64
	CRC32 uint32
	// Index is the load order: 1 for classes.dex, N for classesN.dex.
	Index int

	file *zip.File
}

// Dex is a parsed DEX entry.
type Dex struct {
	Entry
	Container *dex.Container
}

// dexIndex returns the load position of a top-level classes*.dex name, or 0 if
// name is not one.
func dexIndex(name string) int {
	rest, ok := strings.CutPrefix(name, "classes")
	if !ok {
		return 0
	}
	rest, ok = strings.CutSuffix(rest, ".dex")
	if !ok {
		return 0
	}
	if rest == "" {
		return 1
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 2 || strconv.Itoa(n) != rest {
		return 0
	}

	return n
}

func listEntries(r *zip.Reader) []Entry {
	var out []Entry
	for _, f := range r.File {
		idx := dexIndex(f.Name)
		if idx == 0 {
			continue
		}
		out = append(out, Entry{
			Name:  f.Name,
			Size:  f.UncompressedSize64,
			CRC32: f.CRC32,
			Index: idx,
			file:  f,
		})
	}
	slices.SortFunc(out, func(a, b Entry) int { return a.Index - b.Index })

	return out
}

// Entries lists the DEX entries of the APK at path in load order.
//
// Parameters:
//   - path: Location of the APK
//
// Returns:
//   - []Entry: DEX entries, classes.dex first
//   - error: errs.ErrIO when the archive cannot be opened
func Entries(path string) ([]Entry, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errs.ErrIO, path, err)
	}
	defer rc.Close()

	entries := listEntries(&rc.Reader)
	for i := range entries {
		entries[i].file = nil
	}

	return entries, nil
}

// ParseAll parses every DEX entry of the APK at path concurrently.
//
// Parameters:
//   - ctx: Cancels the remaining entries when done
//   - path: Location of the APK
//   - opts: Options passed to dex.Parse for every entry
//
// Returns:
//   - []*Dex: Parsed entries in load order
//   - error: The first read or parse failure, prefixed with the entry name
func ParseAll(ctx context.Context, path string, opts ...dex.Option) ([]*Dex, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errs.ErrIO, path, err)
	}
	defer rc.Close()

	return parseEntries(ctx, listEntries(&rc.Reader), opts)
}

// ParseReader is ParseAll for an archive that is already in memory or otherwise
// accessible through r.
func ParseReader(ctx context.Context, r io.ReaderAt, size int64, opts ...dex.Option) ([]*Dex, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrIO, err)
	}

	return parseEntries(ctx, listEntries(zr), opts)
}

func parseEntries(ctx context.Context, entries []Entry, opts []dex.Option) ([]*Dex, error) {
	out := make([]*Dex, len(entries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, e := range entries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := readEntry(e)
			if err != nil {
				return err
			}
			c, err := dex.Parse(data, opts...)
			if err != nil {
				return fmt.Errorf("%s: %w", e.Name, err)
			}
			out[i] = &Dex{Entry: e, Container: c}

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

func readEntry(e Entry) ([]byte, error) {
	r, err := e.file.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errs.ErrIO, e.Name, err)
	}
	defer r.Close()

	var buf bytes.Buffer
	buf.Grow(int(min(e.Size, maxPrealloc))) //nolint:gosec
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errs.ErrIO, e.Name, err)
	}

	return buf.Bytes(), nil
}
