// Package dex parses, mutates and re-serializes DEX bytecode containers.
//
// A Container is a header plus a Registry holding one Pool per section type. The
// six identifier tables (string, type, proto, field, method and class_def ids) are
// keyed by table index; every data item is keyed by the offset it was parsed from,
// or by a provisional key when it was appended later. Offset references between
// items are Go pointers to the shared pooled item, so two referrers of the same
// offset observe the same value. Index references are plain table indices.
//
// # Parsing
//
// Parse reads the header, the map list and the identifier tables. Data items are
// parsed when first reached from a reference and memoized in their pool:
//
//	c, err := dex.Parse(data, dex.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	for _, def := range c.ClassDefs() {
//	    name, _ := c.TypeName(def.ClassIdx)
//	    fmt.Println(name)
//	}
//
// # Writing
//
// Write lays the container out again from the live pools: header, identifier
// tables, data sections in a fixed order, then the map list. Every data offset is
// reassigned, class body deltas are recomputed from absolute indices, and the
// SHA-1 signature and adler32 checksum are computed last, in that order.
//
//	out, err := c.Write()
//
// # Mutation
//
// Items are removed with DeleteItem, repointed with SetReference and added with
// AppendItem. StripCode removes a method body and marks the method native:
//
//	for _, idx := range c.FindMethods("Lcom/example/Main;", "secret") {
//	    if m, _, ok := c.MethodDefinition(idx); ok {
//	        code, _ := c.StripCode(m)
//	        archive(code)
//	    }
//	}
//
// A write fails with errs.ErrDanglingReference while any reference points at an
// item no longer held by its pool.
package dex
