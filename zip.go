package xltab

import (
	"bytes"
	"encoding/binary"
	"io"
	"unicode/utf8"

	"github.com/klauspost/compress/flate"
	"golang.org/x/text/encoding/charmap"
)

const (
	localHeaderSig    = 0x04034b50
	centralDirSig     = 0x02014b50
	endOfCentralSig   = 0x06054b50
	dataDescriptorSig = 0x08074b50

	methodStored   = 0
	methodDeflated = 8

	flagDataDescriptor = 0x0008
	flagUTF8Name       = 0x0800
)

// zipEntry is one local file entry lifted out of the archive buffer. raw
// aliases the scanned buffer; it is read once by bytes and not mutated.
type zipEntry struct {
	path             string
	method           uint16
	compressedSize   uint32
	uncompressedSize uint32
	raw              []byte
}

// scanArchive walks local file headers from the start of buf. The walk stops
// at the first offset that does not carry a local header signature (central
// directory, end-of-archive record, or garbage) and returns whatever was
// found up to that point. Nothing is verified beyond the header fields
// themselves: no CRC checks, no cross-check against the central directory.
//
// Entries written in streaming mode (flag bit 3) declare zero sizes in the
// local header; their real sizes are resolved from the central directory when
// one is present. Without it the walk ends at the first such entry.
func scanArchive(buf []byte) []zipEntry {
	sizes := centralSizes(buf)

	var entries []zipEntry
	off := 0
	for off+30 <= len(buf) {
		if binary.LittleEndian.Uint32(buf[off:]) != localHeaderSig {
			break
		}
		flags := binary.LittleEndian.Uint16(buf[off+6:])
		method := binary.LittleEndian.Uint16(buf[off+8:])
		csize := binary.LittleEndian.Uint32(buf[off+18:])
		usize := binary.LittleEndian.Uint32(buf[off+22:])
		nameLen := int(binary.LittleEndian.Uint16(buf[off+26:]))
		extraLen := int(binary.LittleEndian.Uint16(buf[off+28:]))

		if flags&flagDataDescriptor != 0 && csize == 0 {
			if s, ok := sizes[uint32(off)]; ok {
				csize, usize = s.compressed, s.uncompressed
			}
		}

		nameStart := off + 30
		dataStart := nameStart + nameLen + extraLen
		dataEnd := dataStart + int(csize)
		if dataStart > len(buf) || dataEnd > len(buf) {
			break
		}

		entries = append(entries, zipEntry{
			path:             entryName(buf[nameStart:nameStart+nameLen], flags),
			method:           method,
			compressedSize:   csize,
			uncompressedSize: usize,
			raw:              buf[dataStart:dataEnd],
		})

		off = dataEnd
		if flags&flagDataDescriptor != 0 {
			off += descriptorLen(buf, off)
		}
	}
	return entries
}

// bytes returns the decompressed payload. The second return is false when the
// entry cannot be opened: unsupported compression method or a corrupt deflate
// stream. Callers treat that the same as an absent entry.
func (e zipEntry) bytes() ([]byte, bool) {
	switch e.method {
	case methodStored:
		return e.raw, true
	case methodDeflated:
		// ZIP entries hold raw deflate, no zlib or gzip wrapper. The
		// stream's own termination wins over the declared size, which
		// is never independently verified.
		fr := flate.NewReader(bytes.NewReader(e.raw))
		defer fr.Close()
		out, err := io.ReadAll(fr)
		if err != nil {
			return nil, false
		}
		return out, true
	default:
		return nil, false
	}
}

type sizePair struct {
	compressed   uint32
	uncompressed uint32
}

// centralSizes indexes central directory entries by local header offset. A
// missing or truncated central directory yields a nil map; lookups then fail
// and streamed entries end the walk early instead.
func centralSizes(buf []byte) map[uint32]sizePair {
	eocd := findEndOfCentral(buf)
	if eocd < 0 {
		return nil
	}
	count := int(binary.LittleEndian.Uint16(buf[eocd+10:]))
	off := int(binary.LittleEndian.Uint32(buf[eocd+16:]))

	sizes := make(map[uint32]sizePair, count)
	for i := 0; i < count && off+46 <= len(buf); i++ {
		if binary.LittleEndian.Uint32(buf[off:]) != centralDirSig {
			break
		}
		headerOff := binary.LittleEndian.Uint32(buf[off+42:])
		sizes[headerOff] = sizePair{
			compressed:   binary.LittleEndian.Uint32(buf[off+20:]),
			uncompressed: binary.LittleEndian.Uint32(buf[off+24:]),
		}
		nameLen := int(binary.LittleEndian.Uint16(buf[off+28:]))
		extraLen := int(binary.LittleEndian.Uint16(buf[off+30:]))
		commentLen := int(binary.LittleEndian.Uint16(buf[off+32:]))
		off += 46 + nameLen + extraLen + commentLen
	}
	return sizes
}

// findEndOfCentral locates the end-of-central-directory record, searching
// backwards through the up-to-64KiB archive comment it may trail.
func findEndOfCentral(buf []byte) int {
	if len(buf) < 22 {
		return -1
	}
	stop := len(buf) - 22 - 0xFFFF
	if stop < 0 {
		stop = 0
	}
	for off := len(buf) - 22; off >= stop; off-- {
		if binary.LittleEndian.Uint32(buf[off:]) == endOfCentralSig {
			return off
		}
	}
	return -1
}

// descriptorLen returns the width of the data descriptor at off. The
// descriptor signature is optional; without it the descriptor is three
// 4-byte fields.
func descriptorLen(buf []byte, off int) int {
	if off+4 <= len(buf) && binary.LittleEndian.Uint32(buf[off:]) == dataDescriptorSig {
		return 16
	}
	return 12
}

// entryName decodes a raw ZIP name. Flag bit 11 marks UTF-8; names without it
// are CP437 per the format, though modern writers emit UTF-8 regardless, so
// valid UTF-8 is taken at face value.
func entryName(raw []byte, flags uint16) string {
	if flags&flagUTF8Name != 0 || utf8.Valid(raw) {
		return string(raw)
	}
	name, err := charmap.CodePage437.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(name)
}
