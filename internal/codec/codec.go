// Package codec implements the framed configuration container (§6.2):
// an 8-byte magic, a 2-byte big-endian format version, and a
// deflate-compressed msgpack body. A bare domain.Aerodrome can also be
// encoded/decoded without the wrapper, for the channel's Downstream
// Config message.
package codec

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/smilemakc/bars/internal/domain"
	"github.com/smilemakc/bars/internal/domain/errors"
)

// Magic is the 8-byte signature every framed container starts with:
// "\xffBARS\x13eu".
var Magic = [8]byte{0xff, 'B', 'A', 'R', 'S', 0x13, 'e', 'u'}

// Format versions for the two container kinds in use.
const (
	VersionConfig uint16 = 0x0001
	VersionMaps   uint16 = 0x8002
)

// EncodeConfig frames and compresses a Config at VersionConfig.
func EncodeConfig(cfg *domain.Config) ([]byte, error) {
	return encode(VersionConfig, cfg)
}

// DecodeConfig unframes a byte stream produced by EncodeConfig.
func DecodeConfig(data []byte) (*domain.Config, error) {
	var cfg domain.Config
	if err := decode(data, VersionConfig, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// EncodeMaps frames and compresses a slice of maps at VersionMaps,
// used to ship TopSky-derived scenery separately from a Config.
func EncodeMaps(maps []domain.Map) ([]byte, error) {
	return encode(VersionMaps, maps)
}

// DecodeMaps unframes a byte stream produced by EncodeMaps.
func DecodeMaps(data []byte) ([]domain.Map, error) {
	var maps []domain.Map
	if err := decode(data, VersionMaps, &maps); err != nil {
		return nil, err
	}
	return maps, nil
}

// EncodeBare msgpack-encodes a with no magic, version, or compression
// wrapper, for a single Aerodrome traveling over the channel's
// Downstream Config message.
func EncodeBare(a *domain.Aerodrome) ([]byte, error) {
	data, err := msgpack.Marshal(a)
	if err != nil {
		return nil, errors.New(errors.ErrCodeEncodeFailed, "marshal bare aerodrome", err)
	}
	return data, nil
}

// DecodeBare is the inverse of EncodeBare.
func DecodeBare(data []byte) (*domain.Aerodrome, error) {
	var a domain.Aerodrome
	if err := msgpack.Unmarshal(data, &a); err != nil {
		return nil, errors.New(errors.ErrCodeDecodeFailed, "unmarshal bare aerodrome", err)
	}
	return &a, nil
}

func encode(version uint16, v any) ([]byte, error) {
	body, err := msgpack.Marshal(v)
	if err != nil {
		return nil, errors.New(errors.ErrCodeEncodeFailed, "marshal container body", err)
	}

	var buf bytes.Buffer
	buf.Write(Magic[:])

	var versionBytes [2]byte
	binary.BigEndian.PutUint16(versionBytes[:], version)
	buf.Write(versionBytes[:])

	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, errors.New(errors.ErrCodeEncodeFailed, "open deflate writer", err)
	}
	if _, err := w.Write(body); err != nil {
		return nil, errors.New(errors.ErrCodeEncodeFailed, "compress container body", err)
	}
	if err := w.Close(); err != nil {
		return nil, errors.New(errors.ErrCodeEncodeFailed, "flush deflate writer", err)
	}

	return buf.Bytes(), nil
}

func decode(data []byte, want uint16, v any) error {
	if len(data) < 10 {
		return errors.New(errors.ErrCodeDecodeFailed, "container too short", nil)
	}
	if !bytes.Equal(data[:8], Magic[:]) {
		return errors.New(errors.ErrCodeDecodeFailed, "bad magic", nil)
	}

	got := binary.BigEndian.Uint16(data[8:10])
	if got != want {
		return errors.New(errors.ErrCodeDecodeFailed, "unexpected container version", nil)
	}

	r := flate.NewReader(bytes.NewReader(data[10:]))
	defer r.Close()

	body, err := io.ReadAll(r)
	if err != nil {
		return errors.New(errors.ErrCodeDecodeFailed, "decompress container body", err)
	}

	if err := msgpack.Unmarshal(body, v); err != nil {
		return errors.New(errors.ErrCodeDecodeFailed, "unmarshal container body", err)
	}
	return nil
}
