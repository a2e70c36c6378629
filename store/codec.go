package store

import (
	"encoding/binary"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
)

// Codec selects how record payloads are compressed.
type Codec uint8

const (
	CodecNone Codec = iota
	CodecLZ4
	CodecZSTD
)

var ErrCorrupt = errors.New("store: corrupt record")

func (c Codec) String() string {
	switch c {
	case CodecLZ4:
		return "lz4"
	case CodecZSTD:
		return "zstd"
	}
	return "none"
}

func ParseCodec(s string) (Codec, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return CodecNone, nil
	case "lz4":
		return CodecLZ4, nil
	case "zstd":
		return CodecZSTD, nil
	}
	return CodecNone, errors.Errorf("store: unknown codec %q", s)
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxRecord))
	return dec
}

// Header layout: [codec uint8][uncompressed size uint32][payload...]
const headerSize = 5

const (
	// maxRecord bounds the uncompressed size of a record.
	maxRecord = 1 << 30
	// an lz4 block expands by at most this factor
	maxLZ4Ratio = 255
	// zstd output is grown past this factor on demand
	zstdHintRatio = 32
)

// encode compresses data, falling back to CodecNone when compression does not
// shrink it.
func encode(data []byte, c Codec) ([]byte, error) {
	if len(data) > maxRecord {
		return nil, errors.Errorf("store: record of %d bytes exceeds %d", len(data), maxRecord)
	}
	var payload []byte
	switch c {
	case CodecLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, errors.Wrap(err, "store: lz4")
		}
		payload = buf[:n]
	case CodecZSTD:
		enc := getZstdEncoder()
		payload = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	}
	if len(payload) == 0 || len(payload) >= len(data) {
		c, payload = CodecNone, data
	}
	out := make([]byte, headerSize+len(payload))
	out[0] = byte(c)
	binary.LittleEndian.PutUint32(out[1:], uint32(len(data)))
	copy(out[headerSize:], payload)
	return out, nil
}

func decode(rec []byte) ([]byte, error) {
	if len(rec) < headerSize {
		return nil, errors.Wrap(ErrCorrupt, "short header")
	}
	var (
		c       = Codec(rec[0])
		size    = binary.LittleEndian.Uint32(rec[1:])
		payload = rec[headerSize:]
	)
	if size > maxRecord {
		return nil, errors.Wrapf(ErrCorrupt, "declared size %d exceeds %d", size, maxRecord)
	}
	switch c {
	case CodecNone:
		if uint32(len(payload)) != size {
			return nil, errors.Wrapf(ErrCorrupt, "have %d bytes, want %d", len(payload), size)
		}
		return append([]byte(nil), payload...), nil
	case CodecLZ4:
		if uint64(size) > maxLZ4Ratio*uint64(len(payload)) {
			return nil, errors.Wrapf(ErrCorrupt, "lz4: %d bytes cannot expand to %d", len(payload), size)
		}
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, errors.Wrapf(ErrCorrupt, "lz4: %v", err)
		}
		if uint32(n) != size {
			return nil, errors.Wrap(ErrCorrupt, "decompressed size mismatch")
		}
		return out, nil
	case CodecZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		out, err := dec.DecodeAll(payload, make([]byte, 0, min(int(size), zstdHintRatio*len(payload))))
		if err != nil {
			return nil, errors.Wrapf(ErrCorrupt, "zstd: %v", err)
		}
		if uint32(len(out)) != size {
			return nil, errors.Wrap(ErrCorrupt, "decompressed size mismatch")
		}
		return out, nil
	}
	return nil, errors.Wrapf(ErrCorrupt, "unknown codec %d", c)
}
