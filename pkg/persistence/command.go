package persistence

import (
	"bytes"
	"fmt"
	"strconv"
)

// Command is one logged operation: an uppercase name plus binary-safe
// arguments. The payload format inside a frame is RESP-style:
//
//	*<count>\r\n$<len>\r\n<name>\r\n$<len>\r\n<arg>\r\n...
//
// Length prefixes keep arguments binary safe (JSON values may contain any
// byte sequence), and the format stays trivially inspectable with a hex dump.
type Command struct {
	Name string
	Args [][]byte
}

// EncodeCommand builds a frame payload for the command.
func EncodeCommand(name string, args ...[]byte) []byte {
	var b bytes.Buffer
	b.WriteByte('*')
	b.WriteString(strconv.Itoa(len(args) + 1))
	b.WriteString("\r\n")
	writeBulk(&b, []byte(name))
	for _, arg := range args {
		writeBulk(&b, arg)
	}
	return b.Bytes()
}

func writeBulk(b *bytes.Buffer, data []byte) {
	b.WriteByte('$')
	b.WriteString(strconv.Itoa(len(data)))
	b.WriteString("\r\n")
	b.Write(data)
	b.WriteString("\r\n")
}

// DecodeCommand parses a frame payload produced by EncodeCommand.
func DecodeCommand(payload []byte) (*Command, error) {
	rest := payload
	if len(rest) == 0 || rest[0] != '*' {
		return nil, fmt.Errorf("malformed command: missing array header")
	}
	count, rest, err := readInt(rest[1:])
	if err != nil {
		return nil, err
	}
	if count < 1 {
		return nil, fmt.Errorf("malformed command: empty array")
	}

	parts := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		if len(rest) == 0 || rest[0] != '$' {
			return nil, fmt.Errorf("malformed command: missing bulk header at element %d", i)
		}
		var size int
		size, rest, err = readInt(rest[1:])
		if err != nil {
			return nil, err
		}
		if size < 0 || len(rest) < size+2 {
			return nil, fmt.Errorf("malformed command: truncated bulk at element %d", i)
		}
		parts = append(parts, rest[:size])
		if rest[size] != '\r' || rest[size+1] != '\n' {
			return nil, fmt.Errorf("malformed command: missing bulk terminator at element %d", i)
		}
		rest = rest[size+2:]
	}

	return &Command{Name: string(parts[0]), Args: parts[1:]}, nil
}

// readInt parses the decimal integer terminated by \r\n and returns the
// remainder after the terminator.
func readInt(data []byte) (int, []byte, error) {
	end := bytes.Index(data, []byte("\r\n"))
	if end < 0 {
		return 0, nil, fmt.Errorf("malformed command: unterminated integer")
	}
	n, err := strconv.Atoi(string(data[:end]))
	if err != nil {
		return 0, nil, fmt.Errorf("malformed command: bad integer: %v", err)
	}
	return n, data[end+2:], nil
}
