package resp

import "errors"

const CRLF string = "\r\n"

// Types equivalent to RESP version 2
const (
	TypeArray   byte = '*'
	TypeBlob    byte = '$'
	TypeSimple  byte = '+'
	TypeError   byte = '-'
	TypeInteger byte = ':'
)

const (
	ProtoInlineMaxSize = 1024 * 64         // Max size of inline reads
	ProtoBulkMaxSize   = 1024 * 1024 * 512 // Same as the server's proto-max-bulk-len default
	ProtoMultiBulkMax  = 1024 * 1024
)

var (
	// ErrIncomplete is returned when the input ends in the middle of a value.
	ErrIncomplete = errors.New("resp: incomplete input")
	// ErrProtocol is returned for input that is not valid RESP.
	ErrProtocol = errors.New("resp: protocol error")
)

type Node interface {
}

type BlobString struct {
	Value string
}

type SimpleString struct {
	Value string
}

type Error struct {
	Message string
}

type Integer struct {
	Value int64
}

type Null struct {
}
