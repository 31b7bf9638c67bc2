package persistence

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
)

// The log is a sequence of CRC-protected binary frames:
//
//	[Magic(1)][Length(4)][CRC32(4)][Payload(N)]
//
// The magic byte marks frame starts so a reader can detect loss of
// synchronization; the checksum catches payload corruption; a short read at
// the tail (power loss mid-write) surfaces as ErrIncompleteFrame and replay
// stops cleanly at the last whole frame.
const (
	frameMagic      = 0x9D
	frameHeaderSize = 9
)

var (
	// ErrInvalidMagic indicates the stream is not positioned at a frame start.
	ErrInvalidMagic = errors.New("invalid frame magic byte")
	// ErrChecksumMismatch indicates payload corruption.
	ErrChecksumMismatch = errors.New("frame crc32 mismatch")
	// ErrIncompleteFrame indicates the file ended in the middle of a frame.
	ErrIncompleteFrame = errors.New("incomplete frame")
)

// WriteFrame encodes payload as one frame on w. Callers are expected to hand
// in a buffered writer so header and payload land in a single syscall.
func WriteFrame(w io.Writer, payload []byte) error {
	header := make([]byte, frameHeaderSize)
	header[0] = frameMagic
	binary.LittleEndian.PutUint32(header[1:5], uint32(len(payload)))
	binary.LittleEndian.PutUint32(header[5:9], crc32.ChecksumIEEE(payload))

	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// ReadFrame reads and validates the next frame. A clean EOF at a frame
// boundary is returned as io.EOF; anything else mid-frame is
// ErrIncompleteFrame.
func ReadFrame(r io.Reader) ([]byte, error) {
	header := make([]byte, frameHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, ErrIncompleteFrame
	}
	if header[0] != frameMagic {
		return nil, ErrInvalidMagic
	}

	length := binary.LittleEndian.Uint32(header[1:5])
	expectedCRC := binary.LittleEndian.Uint32(header[5:9])

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, ErrIncompleteFrame
	}
	if crc32.ChecksumIEEE(payload) != expectedCRC {
		return nil, ErrChecksumMismatch
	}
	return payload, nil
}
