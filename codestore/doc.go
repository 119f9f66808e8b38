// Package codestore reads and writes code stores: archives of method bodies
// removed from DEX containers, together with string metadata.
//
// A store holds two kinds of entries. Key/value entries pair two strings; file
// entries pair a name with a payload compressed by the configured codec. Names are
// looked up through xxHash64 fingerprints.
//
// # Writing
//
//	w, err := codestore.NewWriter(codestore.WithCompression(format.CompressionZstd))
//	if err != nil {
//	    return err
//	}
//	_ = w.AddKeyValue("source", "classes.dex")
//	_ = w.AddFile("LMain;->run()V", codeBytes)
//	data, err := w.Bytes()
//
// # Reading
//
//	store, err := codestore.Read(data)
//	if err != nil {
//	    return err
//	}
//	code, err := store.File("LMain;->run()V")
//
// Read verifies the adler32 checksum and the SHA-1 signature in the footer before
// looking at any entry.
package codestore
