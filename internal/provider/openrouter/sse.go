package openrouter

import (
	"bufio"
	"bytes"
	"io"
)

var dataPrefix = []byte("data:")

// eventReader splits an upstream text/event-stream body into data payloads. Lines can
// carry whole base64 images, so it reads unbounded lines rather than scanning tokens.
type eventReader struct {
	r *bufio.Reader
}

func newEventReader(r io.Reader) *eventReader {
	return &eventReader{r: bufio.NewReaderSize(r, 64*1024)}
}

// next returns the data of the next event. Multiple data lines are joined with "\n".
// Comment lines and other fields are skipped. It returns io.EOF once the body is
// exhausted without a pending event.
func (e *eventReader) next() ([]byte, error) {
	var (
		data    []byte
		pending bool
	)

	for {
		line, err := e.r.ReadBytes('\n')
		if len(line) == 0 && err != nil {
			if err == io.EOF && pending {
				return data, nil
			}
			return nil, err
		}

		line = bytes.TrimRight(line, "\r\n")
		switch {
		case len(line) == 0:
			if pending {
				return data, nil
			}
		case line[0] == ':':
		case bytes.HasPrefix(line, dataPrefix):
			value := bytes.TrimPrefix(line[len(dataPrefix):], []byte(" "))
			if pending {
				data = append(data, '\n')
			}
			data = append(data, value...)
			pending = true
		}

		if err != nil {
			if err == io.EOF && pending {
				return data, nil
			}
			return nil, err
		}
	}
}
