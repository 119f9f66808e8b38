// Package endian provides byte order utilities for reading and writing DEX containers.
//
// DEX files declare their byte order through the endian_tag header field. This
// package maps that tag to an EndianEngine, which combines the ByteOrder and
// AppendByteOrder interfaces of encoding/binary so one value serves both in-place
// reads and append-style writes.
//
// # Basic Usage
//
//	engine, err := endian.EngineForTag(tag)
//	if err != nil {
//	    return err
//	}
//	size := engine.Uint32(data[0x20:])
//
// Almost every DEX in the wild is little-endian, so most code simply uses
// GetLittleEndianEngine().
//
// # Thread Safety
//
// All functions and methods in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/dexkit/errs"
)

// Endian tag values stored in the header. The reverse tag is what a little-endian
// reader sees when the file was produced big-endian.
const (
	EndianConstant        uint32 = 0x12345678
	ReverseEndianConstant uint32 = 0x78563412
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// EngineForTag returns the engine that decodes a file whose endian_tag field,
// read little-endian, equals tag.
//
// Parameters:
//   - tag: endian_tag value decoded with little-endian byte order
//
// Returns:
//   - EndianEngine: little-endian for EndianConstant, big-endian for ReverseEndianConstant
//   - error: errs.ErrUnsupportedEncoding for any other value
func EngineForTag(tag uint32) (EndianEngine, error) {
	switch tag {
	case EndianConstant:
		return binary.LittleEndian, nil
	case ReverseEndianConstant:
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("%w: endian tag 0x%08x", errs.ErrUnsupportedEncoding, tag)
	}
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}
