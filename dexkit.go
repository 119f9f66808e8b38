// Package dexkit parses, mutates and re-emits Dalvik executable (DEX) containers.
//
// The engine lives in the dex package: a Container owns the header and one pool
// per section, resolves offset references into shared Go pointers, and writes a
// consistent, re-checksummed file after any mutation. This package wraps the most
// common entry points and adds Nativize, which strips method bodies and archives
// them in a codestore.
//
// # Basic Usage
//
// Rewriting a file without changes normalizes its layout:
//
//	c, err := dexkit.Open("classes.dex")
//	if err != nil {
//	    return err
//	}
//	out, err := c.Write()
//
// Stripping methods and keeping their code:
//
//	store, _ := codestore.NewWriter(codestore.WithCompression(format.CompressionZstd))
//	report, err := dexkit.Nativize(c, []string{"LMain;->secret(I)I"}, store)
//	if err != nil {
//	    return err
//	}
//	out, err := c.Write()
//	codes, err := store.Bytes()
//
// # Package Structure
//
// For finer control (appending items, rewriting references, iterating sections)
// use the dex package directly.
package dexkit

import (
	"fmt"

	"github.com/arloliu/dexkit/codestore"
	"github.com/arloliu/dexkit/dex"
	"github.com/arloliu/dexkit/errs"
)

// Open reads and parses the DEX file at path.
//
// Parameters:
//   - path: Location of the file
//   - opts: Optional configuration (dex.WithLogger, dex.WithVerifyChecksum)
//
// Returns:
//   - *dex.Container: The parsed container
//   - error: errs.ErrIO when the file cannot be read, or a parse error
func Open(path string, opts ...dex.Option) (*dex.Container, error) {
	return dex.Open(path, opts...)
}

// Parse parses an in-memory DEX image. Every item copies the bytes it needs, so
// data may be reused or modified once Parse returns.
func Parse(data []byte, opts ...dex.Option) (*dex.Container, error) {
	return dex.Parse(data, opts...)
}

// New creates an empty container. Items are added with AppendItem.
func New(opts ...dex.Option) (*dex.Container, error) {
	return dex.New(opts...)
}

// NativizeReport describes the outcome of Nativize.
type NativizeReport struct {
	// Methods lists the signatures of the stripped methods in the order they were processed.
	Methods []string
	// Skipped lists matched methods that had no code, such as abstract or already native ones.
	Skipped []string
	// CodeBytes is the total size of the archived code items before compression.
	CodeBytes int
}

// Nativize strips the code of every method matched by refs and marks it native.
//
// Each ref is either "Lpkg/Cls;->name", matching every overload, or a full
// signature "Lpkg/Cls;->name(I)V". Every ref must match at least one method_id.
// When store is not nil the detached code item of each method is added to it as
// a file entry named by the method signature.
//
// Parameters:
//   - c: Container to mutate
//   - refs: Method references to strip
//   - store: Optional archive receiving the stripped code items
//
// Returns:
//   - *NativizeReport: The stripped and skipped methods
//   - error: errs.ErrUnknownItem when a ref matches nothing, or any store error
func Nativize(c *dex.Container, refs []string, store *codestore.Writer) (*NativizeReport, error) {
	report := &NativizeReport{}
	header := c.Header()
	engine := header.Engine()
	seen := make(map[uint32]struct{})

	for _, ref := range refs {
		indices, err := c.FindMethodsByRef(ref)
		if err != nil {
			return report, err
		}
		if len(indices) == 0 {
			return report, fmt.Errorf("%w: no method matches %q", errs.ErrUnknownItem, ref)
		}

		for _, idx := range indices {
			if _, ok := seen[idx]; ok {
				continue
			}
			seen[idx] = struct{}{}

			sig, err := c.MethodSignature(idx)
			if err != nil {
				return report, err
			}
			m, _, ok := c.MethodDefinition(idx)
			if !ok || m.Code == nil {
				report.Skipped = append(report.Skipped, sig)
				continue
			}

			code, err := m.Code.Bytes(engine)
			if err != nil {
				return report, fmt.Errorf("%s: %w", sig, err)
			}
			if _, err := c.StripCode(m); err != nil {
				return report, fmt.Errorf("%s: %w", sig, err)
			}
			if store != nil {
				if err := store.AddFile(sig, code); err != nil {
					return report, err
				}
			}
			report.Methods = append(report.Methods, sig)
			report.CodeBytes += len(code)
		}
	}

	return report, nil
}
