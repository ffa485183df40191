package store

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"
)

const recordFormatVersionV1 = 1

const maxFieldLength = 65535

func encodeRecord(r *Record) ([]byte, error) {
	if r == nil {
		return nil, errors.New("nil record")
	}
	if len(r.Username) > maxFieldLength {
		return nil, errors.New("username too long")
	}
	if len(r.Token) > maxFieldLength {
		return nil, errors.New("token too long")
	}

	var buf bytes.Buffer
	buf.Grow(1 + 8 + 2 + len(r.Username) + 2 + len(r.Token))

	buf.WriteByte(recordFormatVersionV1)

	var issuedAt int64
	if !r.IssuedAt.IsZero() {
		issuedAt = r.IssuedAt.UnixNano()
	}
	if err := binary.Write(&buf, binary.BigEndian, issuedAt); err != nil {
		return nil, err
	}

	if err := binary.Write(&buf, binary.BigEndian, uint16(len(r.Username))); err != nil {
		return nil, err
	}
	buf.WriteString(r.Username)

	if err := binary.Write(&buf, binary.BigEndian, uint16(len(r.Token))); err != nil {
		return nil, err
	}
	buf.WriteString(r.Token)

	return buf.Bytes(), nil
}

func decodeRecord(data []byte) (*Record, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if version != recordFormatVersionV1 {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, version)
	}

	var issuedAt int64
	if err := binary.Read(reader, binary.BigEndian, &issuedAt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	username, err := readField(reader)
	if err != nil {
		return nil, err
	}
	token, err := readField(reader)
	if err != nil {
		return nil, err
	}
	if reader.Len() != 0 {
		return nil, fmt.Errorf("%w: trailing bytes", ErrCorrupt)
	}

	rec := &Record{
		Username: username,
		Token:    token,
	}
	if token != "" && issuedAt != 0 {
		rec.IssuedAt = time.Unix(0, issuedAt).UTC()
	}
	return rec, nil
}

func readField(reader *bytes.Reader) (string, error) {
	var n uint16
	if err := binary.Read(reader, binary.BigEndian, &n); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	raw := make([]byte, n)
	if _, err := io.ReadFull(reader, raw); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return string(raw), nil
}
