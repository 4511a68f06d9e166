// Package vdfbinary parses Valve's binary VDF format, as used by Steam's
// shortcuts.vdf. Derived from github.com/TimDeve/valve-vdf-binary (MIT).
package vdfbinary

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrEmptyVDF     = errors.New("the vdf you are trying to parse appears empty")
	ErrNotBinaryVDF = errors.New("the vdf appears not to be binary, are you sure it is not a text vdf?")
	ErrCorruptedVDF = errors.New("reached the end of the file earlier than expected, your file might be corrupted")
)

// Type markers in the binary stream. Each map entry is marker, NUL-terminated
// key, then a value whose encoding the marker selects.
const (
	vdfMarkerMap         byte = 0x00
	vdfMarkerString      byte = 0x01
	vdfMarkerNumber      byte = 0x02
	vdfMarkerEndOfMap    byte = 0x08
	vdfMarkerEndOfString byte = 0x00
)

// VdfMap is a parsed VDF object. Keys are lowercased at parse time since the
// format is case-insensitive.
type VdfMap map[string]VdfValue

// VdfValue is one parsed value: a VdfMap, a string, or a uint32.
type VdfValue struct {
	value any
}

// GetMap looks up a nested map under key.
func (v VdfValue) GetMap(key string) (VdfMap, bool) {
	m, ok := v.value.(VdfMap)
	if !ok {
		return nil, false
	}
	child, ok := m[strings.ToLower(key)]
	if !ok {
		return nil, false
	}
	childMap, ok := child.value.(VdfMap)
	return childMap, ok
}

// GetString looks up a string value under key.
func (v VdfValue) GetString(key string) (string, bool) {
	m, ok := v.value.(VdfMap)
	if !ok {
		return "", false
	}
	child, ok := m[strings.ToLower(key)]
	if !ok {
		return "", false
	}
	return child.AsString()
}

// GetUint looks up a number value under key.
func (v VdfValue) GetUint(key string) (uint32, bool) {
	m, ok := v.value.(VdfMap)
	if !ok {
		return 0, false
	}
	child, ok := m[strings.ToLower(key)]
	if !ok {
		return 0, false
	}
	n, ok := child.value.(uint32)
	return n, ok
}

// GetBool looks up a number value under key and reports it as a boolean.
func (v VdfValue) GetBool(key string) (bool, bool) {
	n, ok := v.GetUint(key)
	return n != 0, ok
}

// AsString returns the value itself as a string.
func (v VdfValue) AsString() (string, bool) {
	s, ok := v.value.(string)
	return s, ok
}

// Parse reads one binary VDF document.
func Parse(r io.Reader) (VdfValue, error) {
	buf := bufio.NewReader(r)

	byteArr, err := buf.Peek(1)
	if errors.Is(err, io.EOF) {
		return VdfValue{}, ErrEmptyVDF
	}
	if err != nil {
		return VdfValue{}, fmt.Errorf("peek error: %w", err)
	}

	b := byteArr[0]
	if b != vdfMarkerMap && b != vdfMarkerString && b != vdfMarkerNumber && b != vdfMarkerEndOfMap {
		return VdfValue{}, ErrNotBinaryVDF
	}

	p, err := parseMap(buf)
	if errors.Is(err, io.EOF) {
		return VdfValue{}, ErrCorruptedVDF
	}
	return p, err
}

func parseMap(buf *bufio.Reader) (VdfValue, error) {
	m := make(VdfMap)

	for {
		b, err := buf.ReadByte()
		if err != nil {
			return VdfValue{}, fmt.Errorf("read byte error: %w", err)
		}

		if b == vdfMarkerEndOfMap {
			break
		}

		key, err := parseString(buf)
		if err != nil {
			return VdfValue{}, err
		}

		var value VdfValue
		switch b {
		case vdfMarkerMap:
			value, err = parseMap(buf)
		case vdfMarkerNumber:
			value, err = parseNumber(buf)
		case vdfMarkerString:
			value, err = parseStringValue(buf)
		default:
			err = fmt.Errorf("unexpected byte: 0x%02x, your file might be corrupted", b)
		}

		if err != nil {
			return VdfValue{}, err
		}

		m[strings.ToLower(key)] = value
	}

	return VdfValue{m}, nil
}

func parseNumber(buf *bufio.Reader) (VdfValue, error) {
	bf := make([]byte, 4)

	if _, err := io.ReadFull(buf, bf); err != nil {
		return VdfValue{}, fmt.Errorf("read number error: %w", err)
	}

	number := binary.LittleEndian.Uint32(bf)

	return VdfValue{number}, nil
}

func parseString(buf *bufio.Reader) (string, error) {
	s, err := buf.ReadString(vdfMarkerEndOfString)
	if err == nil {
		return s[:len(s)-1], nil
	}
	return "", fmt.Errorf("read string error: %w", err)
}

func parseStringValue(buf *bufio.Reader) (VdfValue, error) {
	s, err := parseString(buf)
	return VdfValue{s}, err
}
