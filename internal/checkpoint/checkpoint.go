// Package checkpoint saves and restores model state dicts as a single
// binary file with a SHA-256 integrity trailer.
//
// Layout (little-endian):
//
//	magic "PCKP" | version u16 | tensor count u32
//	per tensor: name len u16 | name | dtype u8 | ndim u8 | dims i64... | data len u64 | data
//	trailer: SHA-256 over everything above
package checkpoint

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/primer-ml/primer/internal/tensor"
)

var magic = [4]byte{'P', 'C', 'K', 'P'}

const version uint16 = 1

// ErrChecksumMismatch reports a corrupted checkpoint file.
var ErrChecksumMismatch = errors.New("checkpoint: checksum mismatch")

// Save writes a state dict to path. Tensors are written in sorted name
// order so identical states produce identical files.
func Save(path string, state map[string]*tensor.RawTensor) error {
	var buf bytes.Buffer

	buf.Write(magic[:])
	if err := binary.Write(&buf, binary.LittleEndian, version); err != nil {
		return fmt.Errorf("checkpoint: write header: %w", err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(state))); err != nil {
		return fmt.Errorf("checkpoint: write header: %w", err)
	}

	names := make([]string, 0, len(state))
	for name := range state {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := writeTensor(&buf, name, state[name]); err != nil {
			return err
		}
	}

	sum := sha256.Sum256(buf.Bytes())
	buf.Write(sum[:])

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	return nil
}

func writeTensor(w *bytes.Buffer, name string, raw *tensor.RawTensor) error {
	if len(name) > int(^uint16(0)) {
		return fmt.Errorf("checkpoint: tensor name %q too long", name[:32])
	}

	binary.Write(w, binary.LittleEndian, uint16(len(name)))
	w.WriteString(name)
	w.WriteByte(byte(raw.DType()))

	shape := raw.Shape()
	w.WriteByte(byte(len(shape)))
	for _, dim := range shape {
		binary.Write(w, binary.LittleEndian, int64(dim))
	}

	data := raw.Bytes()
	binary.Write(w, binary.LittleEndian, uint64(len(data)))
	w.Write(data)
	return nil
}

// Load reads a state dict from path, verifying the checksum trailer.
func Load(path string) (map[string]*tensor.RawTensor, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: %w", err)
	}
	if len(blob) < len(magic)+2+4+sha256.Size {
		return nil, fmt.Errorf("checkpoint: file too short (%d bytes)", len(blob))
	}

	body, trailer := blob[:len(blob)-sha256.Size], blob[len(blob)-sha256.Size:]
	if sum := sha256.Sum256(body); !bytes.Equal(sum[:], trailer) {
		return nil, ErrChecksumMismatch
	}

	r := bytes.NewReader(body)
	var gotMagic [4]byte
	io.ReadFull(r, gotMagic[:])
	if gotMagic != magic {
		return nil, fmt.Errorf("checkpoint: bad magic %q", gotMagic)
	}

	var gotVersion uint16
	if err := binary.Read(r, binary.LittleEndian, &gotVersion); err != nil {
		return nil, fmt.Errorf("checkpoint: read version: %w", err)
	}
	if gotVersion != version {
		return nil, fmt.Errorf("checkpoint: unsupported version %d", gotVersion)
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("checkpoint: read count: %w", err)
	}

	state := make(map[string]*tensor.RawTensor, count)
	for i := uint32(0); i < count; i++ {
		name, raw, err := readTensor(r)
		if err != nil {
			return nil, fmt.Errorf("checkpoint: tensor %d: %w", i, err)
		}
		state[name] = raw
	}

	return state, nil
}

func readTensor(r *bytes.Reader) (string, *tensor.RawTensor, error) {
	var nameLen uint16
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return "", nil, err
	}
	nameBytes := make([]byte, nameLen)
	if _, err := io.ReadFull(r, nameBytes); err != nil {
		return "", nil, err
	}

	dtypeByte, err := r.ReadByte()
	if err != nil {
		return "", nil, err
	}
	ndim, err := r.ReadByte()
	if err != nil {
		return "", nil, err
	}

	shape := make(tensor.Shape, ndim)
	for d := range shape {
		var dim int64
		if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
			return "", nil, err
		}
		shape[d] = int(dim)
	}

	var dataLen uint64
	if err := binary.Read(r, binary.LittleEndian, &dataLen); err != nil {
		return "", nil, err
	}

	dtype := tensor.DataType(dtypeByte)
	if dtype < tensor.Float32 || dtype > tensor.Bool {
		return "", nil, fmt.Errorf("unknown dtype byte %d", dtypeByte)
	}
	if want := uint64(shape.NumElements() * dtype.Size()); dataLen != want {
		return "", nil, fmt.Errorf("data length %d does not match shape %v dtype %s", dataLen, shape, dtype)
	}

	data := make([]byte, dataLen)
	if _, err := io.ReadFull(r, data); err != nil {
		return "", nil, err
	}

	raw, err := tensor.NewRawFromBytes(data, shape, dtype, tensor.CPU)
	if err != nil {
		return "", nil, err
	}
	return string(nameBytes), raw, nil
}
