// Package stretchio implements a binary file format for sparse stretch
// vectors.
//
// The file is little-endian throughout:
//
//	magic   [8]byte  // "STRETCH1"
//	kind    uint8    // stretch.Kind; Opaque is not encodable
//	numRuns uint64
//
// followed by one record per run, in increasing coordinate order:
//
//	start   int64    // run interval start
//	length  int64    // run interval length, in elements
//	flags   uint8    // bit 0: payload is snappy-compressed
//	nBytes  uint64   // payload size in the file
//	sum     uint64   // seahash of the uncompressed payload
//	payload [nBytes]byte
//
// The payload is the run buffer's native little-endian element bytes,
// snappy-compressed per run when that actually shrinks it.  Read verifies
// the magic, the per-run checksums, and the run ordering invariants before
// returning, so a truncated or corrupted file never yields a vector.
package stretchio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"blainsmith.com/go/seahash"
	"github.com/golang/snappy"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/stretch"
)

var magic = [8]byte{'S', 'T', 'R', 'E', 'T', 'C', 'H', '1'}

const flagSnappy = 1 << 0

const runHeaderSize = 8 + 8 + 1 + 8 + 8

// Write serializes v to w.  Opaque-kind vectors are rejected: reference
// payloads have no portable encoding.
func Write(w io.Writer, v *stretch.Vector) error {
	if v.Kind() == stretch.Opaque {
		return errors.E("stretchio.Write: opaque vectors cannot be encoded")
	}
	var hdr [8 + 1 + 8]byte
	copy(hdr[:8], magic[:])
	hdr[8] = byte(v.Kind())
	binary.LittleEndian.PutUint64(hdr[9:], uint64(v.NumRuns()))
	if _, err := w.Write(hdr[:]); err != nil {
		return errors.E(err, "stretchio.Write: header")
	}
	for i := 0; i < v.NumRuns(); i++ {
		iv, buf := v.Run(i)
		raw := marshalPayload(buf)
		payload := raw
		var flags byte
		if comp := snappy.Encode(nil, raw); len(comp) < len(raw) {
			payload = comp
			flags |= flagSnappy
		}
		h := seahash.New()
		h.Write(raw) // nolint: errcheck
		var rec [runHeaderSize]byte
		binary.LittleEndian.PutUint64(rec[0:], uint64(iv.Start))
		binary.LittleEndian.PutUint64(rec[8:], uint64(iv.Len()))
		rec[16] = flags
		binary.LittleEndian.PutUint64(rec[17:], uint64(len(payload)))
		binary.LittleEndian.PutUint64(rec[25:], h.Sum64())
		if _, err := w.Write(rec[:]); err != nil {
			return errors.E(err, "stretchio.Write: run header")
		}
		if _, err := w.Write(payload); err != nil {
			return errors.E(err, "stretchio.Write: run payload")
		}
	}
	return nil
}

// Read deserializes a vector from r.
func Read(r io.Reader) (*stretch.Vector, error) {
	var hdr [8 + 1 + 8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, errors.E(err, "stretchio.Read: header")
	}
	for i := range magic {
		if hdr[i] != magic[i] {
			return nil, errors.E("stretchio.Read: bad magic; not a stretch vector file")
		}
	}
	kind := stretch.Kind(hdr[8])
	if !kind.Valid() || kind == stretch.Opaque {
		return nil, errors.E("stretchio.Read: unsupported element kind", fmt.Sprint(int(hdr[8])))
	}
	numRuns := binary.LittleEndian.Uint64(hdr[9:])
	v := stretch.NewVector(kind)
	prevEnd := stretch.PosType(math.MinInt64)
	for i := uint64(0); i < numRuns; i++ {
		var rec [runHeaderSize]byte
		if _, err := io.ReadFull(r, rec[:]); err != nil {
			return nil, errors.E(err, "stretchio.Read: run header")
		}
		start := stretch.PosType(binary.LittleEndian.Uint64(rec[0:]))
		length := int64(binary.LittleEndian.Uint64(rec[8:]))
		flags := rec[16]
		nBytes := binary.LittleEndian.Uint64(rec[17:])
		sum := binary.LittleEndian.Uint64(rec[25:])
		// The upper bound keeps rawLen and snappy.MaxEncodedLen within
		// int range; without it a hostile length overflows the payload
		// size guard below.
		if length <= 0 || length > math.MaxInt32 {
			return nil, errors.E("stretchio.Read: corrupt run length", fmt.Sprint(length))
		}
		if start < prevEnd {
			return nil, errors.E("stretchio.Read: runs out of order or overlapping at", fmt.Sprint(int64(start)))
		}
		rawLen := int(length) * kind.ElemBytes()
		maxBytes := rawLen
		if flags&flagSnappy != 0 {
			maxBytes = snappy.MaxEncodedLen(rawLen)
		}
		if nBytes > uint64(maxBytes) {
			return nil, errors.E("stretchio.Read: corrupt payload size", fmt.Sprint(nBytes))
		}
		payload := make([]byte, nBytes)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, errors.E(err, "stretchio.Read: run payload")
		}
		raw := payload
		if flags&flagSnappy != 0 {
			var err error
			if raw, err = snappy.Decode(nil, payload); err != nil {
				return nil, errors.E(err, "stretchio.Read: snappy payload")
			}
		}
		if len(raw) != rawLen {
			return nil, errors.E("stretchio.Read: payload length mismatch", fmt.Sprint(len(raw)), "vs", fmt.Sprint(rawLen))
		}
		h := seahash.New()
		h.Write(raw) // nolint: errcheck
		if h.Sum64() != sum {
			return nil, errors.E("stretchio.Read: checksum mismatch for run starting at", fmt.Sprint(int64(start)))
		}
		buf := unmarshalPayload(kind, raw, int(length))
		if err := v.SetRange(start, start+stretch.PosType(length), buf); err != nil {
			return nil, errors.E(err, "stretchio.Read")
		}
		prevEnd = start + stretch.PosType(length)
	}
	return v, nil
}

// WriteFile writes v to path via base/file (so S3-style paths work when a
// backend is registered).
func WriteFile(path string, v *stretch.Vector) (err error) {
	ctx := vcontext.Background()
	out, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	return Write(out.Writer(ctx), v)
}

// ReadFile reads a vector from path.
func ReadFile(path string) (v *stretch.Vector, err error) {
	ctx := vcontext.Background()
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer file.CloseAndReport(ctx, in, &err)
	return Read(in.Reader(ctx))
}

func marshalPayload(buf stretch.Buffer) []byte {
	out := make([]byte, buf.Len()*buf.Kind().ElemBytes())
	switch buf.Kind() {
	case stretch.Float32:
		for i, f := range buf.Float32s() {
			binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
		}
	case stretch.Int32:
		for i, n := range buf.Int32s() {
			binary.LittleEndian.PutUint32(out[i*4:], uint32(n))
		}
	case stretch.Int64:
		for i, n := range buf.Int64s() {
			binary.LittleEndian.PutUint64(out[i*8:], uint64(n))
		}
	}
	return out
}

func unmarshalPayload(kind stretch.Kind, raw []byte, n int) stretch.Buffer {
	switch kind {
	case stretch.Float32:
		vals := make([]float32, n)
		for i := range vals {
			vals[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}
		return stretch.BufferOfFloat32s(vals)
	case stretch.Int32:
		vals := make([]int32, n)
		for i := range vals {
			vals[i] = int32(binary.LittleEndian.Uint32(raw[i*4:]))
		}
		return stretch.BufferOfInt32s(vals)
	case stretch.Int64:
		vals := make([]int64, n)
		for i := range vals {
			vals[i] = int64(binary.LittleEndian.Uint64(raw[i*8:]))
		}
		return stretch.BufferOfInt64s(vals)
	}
	panic("stretchio: unreachable kind " + kind.String())
}
