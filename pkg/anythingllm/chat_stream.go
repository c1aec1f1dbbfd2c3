package anythingllm

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"sync"
)

// sseDataPrefix is the framing some server versions put in front of each
// streamed line. It is stripped before decoding.
var sseDataPrefix = []byte("data: ")

// ChatStream is a pull cursor over a streamed chat response. Chunks arrive
// as newline-delimited JSON objects; the stream ends after the chunk whose
// Close field is true, or when the connection closes. A ChatStream is finite
// and cannot be restarted.
//
// The stream is not safe for concurrent use. Callers that stop consuming
// early must call Close to release the underlying connection.
type ChatStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner

	mu     sync.Mutex
	closed bool
	done   bool
}

func newChatStream(body io.ReadCloser) *ChatStream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	return &ChatStream{
		body:    body,
		scanner: scanner,
	}
}

// Next returns the next chunk of the stream. It blocks until a chunk
// arrives, the server closes the stream, or the request context ends.
// io.EOF signals normal termination. A trailing line cut off mid-chunk is
// dropped rather than surfaced as malformed data.
func (s *ChatStream) Next() (*ChatChunk, error) {
	s.mu.Lock()
	finished := s.done || s.closed
	s.mu.Unlock()

	if finished {
		return nil, io.EOF
	}

	for s.scanner.Scan() {
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		line = bytes.TrimPrefix(line, sseDataPrefix)

		var chunk ChatChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			// Incomplete or garbled line, typically a connection cut
			// mid-chunk. Skip it and keep reading.
			continue
		}

		if chunk.Close {
			s.finish()
		}
		return &chunk, nil
	}

	if err := s.scanner.Err(); err != nil {
		s.finish()
		return nil, err
	}

	s.finish()
	return nil, io.EOF
}

// Close releases the underlying connection. It is safe to call at any
// point of consumption and more than once.
func (s *ChatStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}

func (s *ChatStream) finish() {
	s.mu.Lock()
	s.done = true
	alreadyClosed := s.closed
	s.closed = true
	s.mu.Unlock()

	if !alreadyClosed {
		s.body.Close()
	}
}

// Collect drains the stream and returns every remaining chunk. The stream
// is closed when Collect returns.
func (s *ChatStream) Collect() ([]ChatChunk, error) {
	defer s.Close()

	var chunks []ChatChunk
	for {
		chunk, err := s.Next()
		if err == io.EOF {
			return chunks, nil
		}
		if err != nil {
			return chunks, err
		}
		chunks = append(chunks, *chunk)
	}
}
