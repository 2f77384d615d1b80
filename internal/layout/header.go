package layout

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrNotInitialized is returned by Decode when the signature doesn't match,
// meaning the device has no vcstore header yet (§4.2 "Header read acceptance").
var ErrNotInitialized = errors.New("layout: signature absent, device not initialized")

// ErrUnsupportedVersion is returned by Decode when the signature matches but
// the version field does not.
var ErrUnsupportedVersion = errors.New("layout: unsupported header version")

// Encode serializes h into a fresh HeaderSize-byte buffer.
func Encode(h *Header) ([]byte, error) {
	if len(h.StrategyName) > strategyNameLen {
		return nil, fmt.Errorf("layout: strategy name %q exceeds %d bytes", h.StrategyName, strategyNameLen)
	}

	buf := make([]byte, HeaderSize)
	copy(buf[0:8], Signature[:])
	binary.LittleEndian.PutUint32(buf[8:12], Version)
	binary.LittleEndian.PutUint32(buf[12:16], h.VectorDim)
	binary.LittleEndian.PutUint32(buf[16:20], h.MaxClusters)
	binary.LittleEndian.PutUint32(buf[20:24], h.VectorCount)
	binary.LittleEndian.PutUint32(buf[24:28], h.NextID)
	binary.LittleEndian.PutUint64(buf[28:36], h.ClusterMapOffset)
	binary.LittleEndian.PutUint64(buf[36:44], h.VectorMapOffset)
	binary.LittleEndian.PutUint64(buf[44:52], h.DataOffset)
	copy(buf[52:52+strategyNameLen], h.StrategyName)
	// buf[52+strategyNameLen:] is the reserved region and stays zero.
	return buf, nil
}

// Decode parses a HeaderSize-byte buffer into a Header, validating the
// signature and version per §4.2.
func Decode(buf []byte) (*Header, error) {
	if len(buf) < HeaderSize {
		return nil, fmt.Errorf("layout: header buffer too short: %d bytes", len(buf))
	}
	if string(buf[0:8]) != string(Signature[:]) {
		return nil, ErrNotInitialized
	}
	version := binary.LittleEndian.Uint32(buf[8:12])
	if version != Version {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrUnsupportedVersion, version, Version)
	}

	h := &Header{
		Version:          version,
		VectorDim:        binary.LittleEndian.Uint32(buf[12:16]),
		MaxClusters:      binary.LittleEndian.Uint32(buf[16:20]),
		VectorCount:      binary.LittleEndian.Uint32(buf[20:24]),
		NextID:           binary.LittleEndian.Uint32(buf[24:28]),
		ClusterMapOffset: binary.LittleEndian.Uint64(buf[28:36]),
		VectorMapOffset:  binary.LittleEndian.Uint64(buf[36:44]),
		DataOffset:       binary.LittleEndian.Uint64(buf[44:52]),
	}
	name := buf[52 : 52+strategyNameLen]
	end := strategyNameLen
	for i, b := range name {
		if b == 0 {
			end = i
			break
		}
	}
	h.StrategyName = string(name[:end])
	return h, nil
}
