package resp

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// RESP3 is a RESP3 protocol parser and serializer.
// https://github.com/redis/redis-specifications/blob/master/protocol/RESP3.md

// Types introduced by RESP3
const (
	TypeNull      byte = '_'
	TypeDouble    byte = ','
	TypeBoolean   byte = '#'
	TypeBlobError byte = '!'
	TypeVerbatim  byte = '='
	TypeMap       byte = '%'
	TypeSet       byte = '~'
	TypeAttribute byte = '|'
	TypePush      byte = '>'
	TypeBignum    byte = '('
)

type Double struct {
	Value float64
}

type Boolean struct {
	Value bool
}

type BlobError struct {
	Message string
}

type VerbatimString struct {
	Format string
	Value  string
}

type BigNum struct {
	Value string
}

// Array represents an array in RESP
type Array struct {
	Elements []Node
}

// Map keys must be comparable nodes (strings, numbers, ...).
type Map struct {
	Elements map[Node]Node
}

type Set struct {
	Elements []Node
}

type Push struct {
	Elements []Node
}

// Decode parses one RESP value from the front of data and returns it
// together with the unconsumed remainder.
func Decode(data []byte) (node Node, rest []byte, err error) {
	defer func() {
		// map keys built from aggregate nodes are not hashable
		if r := recover(); r != nil {
			node, rest, err = nil, data, fmt.Errorf("%w: %v", ErrProtocol, r)
		}
	}()
	return parseRESP(data)
}

// splitLine returns the header line after the type byte and the rest of data.
func splitLine(data []byte) ([]byte, []byte, error) {
	idx := bytes.Index(data, []byte(CRLF))
	if idx < 0 {
		return nil, data, ErrIncomplete
	}
	return data[1:idx], data[idx+2:], nil
}

func parseLength(line []byte) (int, error) {
	n, err := strconv.Atoi(string(line))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid length %q", ErrProtocol, line)
	}
	return n, nil
}

func parseAggregate(data []byte, count int) ([]Node, []byte, error) {
	if count < 0 {
		return nil, data, nil
	}
	if count > ProtoMultiBulkMax {
		return nil, data, fmt.Errorf("%w: invalid multibulk length", ErrProtocol)
	}
	elements := make([]Node, count)
	var err error
	for i := 0; i < count; i++ {
		elements[i], data, err = parseRESP(data)
		if err != nil {
			return nil, data, err
		}
	}
	return elements, data, nil
}

func parseRESP(data []byte) (Node, []byte, error) {
	if len(data) == 0 {
		return nil, data, ErrIncomplete
	}
	line, remaining, err := splitLine(data)
	if err != nil {
		return nil, data, err
	}

	switch data[0] {
	case TypeArray, TypeSet, TypePush:
		count, err := parseLength(line)
		if err != nil {
			return nil, data, err
		}
		elements, remaining, err := parseAggregate(remaining, count)
		if err != nil {
			return nil, data, err
		}
		switch {
		case data[0] == TypeSet:
			return Set{Elements: elements}, remaining, nil
		case data[0] == TypePush:
			return Push{Elements: elements}, remaining, nil
		case count < 0:
			return Null{}, remaining, nil
		}
		return Array{Elements: elements}, remaining, nil

	case TypeBlob, TypeBlobError, TypeVerbatim:
		length, err := parseLength(line)
		if err != nil {
			return nil, data, err
		}
		if length < 0 && data[0] == TypeBlob {
			return Null{}, remaining, nil
		}
		if length < 0 || length > ProtoBulkMaxSize {
			return nil, data, fmt.Errorf("%w: invalid bulk length", ErrProtocol)
		}
		if len(remaining) < length+2 {
			return nil, data, ErrIncomplete
		}
		if !bytes.Equal(remaining[length:length+2], []byte(CRLF)) {
			return nil, data, fmt.Errorf("%w: bulk not terminated by CRLF", ErrProtocol)
		}
		payload := string(remaining[:length])
		remaining = remaining[length+2:]

		switch data[0] {
		case TypeBlobError:
			return BlobError{Message: payload}, remaining, nil
		case TypeVerbatim:
			// The format is always 3 characters followed by ':'
			if len(payload) < 4 || payload[3] != ':' {
				return nil, data, fmt.Errorf("%w: malformed verbatim string", ErrProtocol)
			}
			return VerbatimString{Format: payload[:3], Value: payload[4:]}, remaining, nil
		}
		return BlobString{Value: payload}, remaining, nil

	case TypeInteger:
		num, err := strconv.ParseInt(string(line), 10, 64)
		if err != nil {
			return nil, data, fmt.Errorf("%w: invalid integer %q", ErrProtocol, line)
		}
		return Integer{Value: num}, remaining, nil

	case TypeSimple:
		return SimpleString{Value: string(line)}, remaining, nil

	case TypeError:
		return Error{Message: string(line)}, remaining, nil

	case TypeBoolean:
		switch string(line) {
		case "t":
			return Boolean{Value: true}, remaining, nil
		case "f":
			return Boolean{Value: false}, remaining, nil
		}
		return nil, data, fmt.Errorf("%w: invalid boolean %q", ErrProtocol, line)

	case TypeNull:
		return Null{}, remaining, nil

	case TypeDouble:
		value, err := strconv.ParseFloat(string(line), 64)
		if err != nil {
			return nil, data, fmt.Errorf("%w: invalid double %q", ErrProtocol, line)
		}
		return Double{Value: value}, remaining, nil

	case TypeBignum:
		return BigNum{Value: string(line)}, remaining, nil

	case TypeMap, TypeAttribute:
		count, err := parseLength(line)
		if err != nil {
			return nil, data, err
		}
		pairs, remaining, err := parseAggregate(remaining, count*2)
		if err != nil {
			return nil, data, err
		}
		m := make(map[Node]Node, count)
		for i := 0; i+1 < len(pairs); i += 2 {
			m[pairs[i]] = pairs[i+1]
		}
		if data[0] == TypeMap {
			return Map{Elements: m}, remaining, nil
		}

		// Attributes are followed by the actual payload; the attributes are dropped.
		return parseRESP(remaining)

	default:
		return nil, data, fmt.Errorf("%w: unexpected type byte %q", ErrProtocol, data[0])
	}
}

// Encode serializes a command and its arguments as a RESP multibulk request.
func Encode(command string, arguments ...string) []byte {
	totalArgs := len(arguments) + 1 // +1 for the command itself

	var builder strings.Builder

	// Array with totalArgs elements
	builder.WriteString(fmt.Sprintf("*%d%s", totalArgs, CRLF))

	// Add the command
	builder.WriteString(fmt.Sprintf("$%d%s%s%s", len(command), CRLF, command, CRLF))

	// Add the arguments
	for _, arg := range arguments {
		builder.WriteString(fmt.Sprintf("$%d%s%s%s", len(arg), CRLF, arg, CRLF))
	}

	return []byte(builder.String())
}
