package resp

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Reader reads client requests, either multibulk arrays or inline commands,
// from a byte stream such as an AOF file or a redis-cli --pipe payload.
type Reader struct {
	rd *bufio.Reader
}

func NewReader(r io.Reader) *Reader {
	return &Reader{rd: bufio.NewReaderSize(r, ProtoInlineMaxSize)}
}

// ReadCommand returns the next request as an argument vector whose first
// element is the command name. Bulk arguments are []byte, integer arguments
// int64 and inline arguments string. It returns io.EOF at a clean end of input.
func (r *Reader) ReadCommand() ([]any, error) {
	for {
		line, err := r.readLine()
		if err != nil {
			return nil, err
		}
		if len(line) == 0 {
			// empty inline lines are ignored, like the server does
			continue
		}
		var argv []any
		if line[0] == TypeArray {
			argv, err = r.readMultiBulk(line)
		} else {
			argv, err = r.readInline(line)
		}
		if err != nil {
			return nil, err
		}
		if len(argv) == 0 {
			// *0, *-1 and blank inline requests carry no command
			continue
		}
		return argv, nil
	}
}

func (r *Reader) readLine() ([]byte, error) {
	line, err := r.rd.ReadSlice('\n')
	switch {
	case errors.Is(err, bufio.ErrBufferFull):
		return nil, fmt.Errorf("%w: too big inline request", ErrProtocol)
	case errors.Is(err, io.EOF) && len(line) > 0:
		return nil, ErrIncomplete
	case err != nil:
		return nil, err
	}
	if len(line) > ProtoInlineMaxSize {
		return nil, fmt.Errorf("%w: too big inline request", ErrProtocol)
	}
	line = bytes.TrimSuffix(line[:len(line)-1], []byte{'\r'})
	return line, nil
}

func (r *Reader) readMultiBulk(header []byte) ([]any, error) {
	count, err := strconv.Atoi(string(header[1:]))
	if err != nil || count > ProtoMultiBulkMax {
		return nil, fmt.Errorf("%w: invalid multibulk length", ErrProtocol)
	}
	if count <= 0 {
		return nil, nil
	}

	argv := make([]any, 0, count)
	for i := 0; i < count; i++ {
		line, err := r.readLine()
		if err != nil {
			return nil, noEOF(err)
		}
		if len(line) == 0 {
			return nil, fmt.Errorf("%w: expected '$', got empty line", ErrProtocol)
		}

		switch line[0] {
		case TypeBlob:
			size, err := strconv.Atoi(string(line[1:]))
			if err != nil || size < 0 || size > ProtoBulkMaxSize {
				return nil, fmt.Errorf("%w: invalid bulk length", ErrProtocol)
			}
			buf := make([]byte, size+2)
			if _, err := io.ReadFull(r.rd, buf); err != nil {
				return nil, noEOF(err)
			}
			if buf[size] != '\r' || buf[size+1] != '\n' {
				return nil, fmt.Errorf("%w: bulk not terminated by CRLF", ErrProtocol)
			}
			argv = append(argv, buf[:size])
		case TypeInteger:
			n, err := strconv.ParseInt(string(line[1:]), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid integer %q", ErrProtocol, line[1:])
			}
			argv = append(argv, n)
		default:
			return nil, fmt.Errorf("%w: expected '$', got '%c'", ErrProtocol, line[0])
		}
	}
	return argv, nil
}

func (r *Reader) readInline(line []byte) ([]any, error) {
	args, err := SplitArgs(string(line))
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, nil
	}
	argv := make([]any, len(args))
	for i, arg := range args {
		argv[i] = arg
	}
	return argv, nil
}

func noEOF(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrIncomplete
	}
	return err
}

// SplitArgs splits a line into arguments following redis-cli quoting rules:
// double quotes support \n \r \t \b \a \\ \" and \xHH escapes, single quotes
// only \'. A closing quote must be followed by a space or the end of line.
func SplitArgs(line string) ([]string, error) {
	var (
		args []string
		cur  strings.Builder
	)
	i := 0
	for {
		for i < len(line) && isSpace(line[i]) {
			i++
		}
		if i >= len(line) {
			return args, nil
		}

		inDQ, inSQ, done := false, false, false
		cur.Reset()
		for !done {
			if i >= len(line) {
				if inDQ || inSQ {
					return nil, fmt.Errorf("%w: unbalanced quotes in request", ErrProtocol)
				}
				break
			}
			c := line[i]
			switch {
			case inDQ:
				switch {
				case c == '\\' && i+3 < len(line) && line[i+1] == 'x' && isHex(line[i+2]) && isHex(line[i+3]):
					b, _ := strconv.ParseUint(line[i+2:i+4], 16, 8)
					cur.WriteByte(byte(b))
					i += 3
				case c == '\\' && i+1 < len(line):
					i++
					switch line[i] {
					case 'n':
						cur.WriteByte('\n')
					case 'r':
						cur.WriteByte('\r')
					case 't':
						cur.WriteByte('\t')
					case 'b':
						cur.WriteByte('\b')
					case 'a':
						cur.WriteByte('\a')
					default:
						cur.WriteByte(line[i])
					}
				case c == '"':
					if i+1 < len(line) && !isSpace(line[i+1]) {
						return nil, fmt.Errorf("%w: closing quote must be followed by a space", ErrProtocol)
					}
					done = true
				default:
					cur.WriteByte(c)
				}
			case inSQ:
				switch {
				case c == '\\' && i+1 < len(line) && line[i+1] == '\'':
					i++
					cur.WriteByte('\'')
				case c == '\'':
					if i+1 < len(line) && !isSpace(line[i+1]) {
						return nil, fmt.Errorf("%w: closing quote must be followed by a space", ErrProtocol)
					}
					done = true
				default:
					cur.WriteByte(c)
				}
			default:
				switch c {
				case ' ', '\n', '\r', '\t', 0:
					done = true
				case '"':
					inDQ = true
				case '\'':
					inSQ = true
				default:
					cur.WriteByte(c)
				}
			}
			i++
		}
		args = append(args, cur.String())
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\v' || c == '\f'
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
