package translate

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"iter"

	"github.com/tidwall/gjson"
)

const (
	sseDataPrefix = "data:"
	doneSentinel  = "[DONE]"

	// maxSSELine bounds a single upstream SSE line.
	maxSSELine = 4 << 20
)

// ChatFrames turns an upstream SSE chat stream into NDJSON frames, one per
// upstream data line, each with a trailing newline. It reads lazily: a frame
// is yielded as soon as its line arrives. On the [DONE] sentinel it yields
// the line "[DONE]\n" and stops reading. Lines without the data prefix, empty
// payloads and payloads that are not JSON are skipped; skipped, if non-nil,
// sees each skipped payload. A read error is yielded once, last.
func ChatFrames(r io.Reader, skipped func(payload []byte)) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64<<10), maxSSELine)
		for sc.Scan() {
			line := sc.Bytes()
			if !bytes.HasPrefix(line, []byte(sseDataPrefix)) {
				continue
			}
			payload := bytes.TrimSpace(line[len(sseDataPrefix):])
			if len(payload) == 0 {
				continue
			}
			if string(payload) == doneSentinel {
				yield([]byte(doneSentinel+"\n"), nil)
				return
			}
			if !gjson.ValidBytes(payload) {
				if skipped != nil {
					skipped(payload)
				}
				continue
			}
			frame := make([]byte, len(payload)+1)
			copy(frame, payload)
			frame[len(payload)] = '\n'
			if !yield(frame, nil) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// PassThrough copies the upstream body to w unchanged, calling flush after
// every chunk so tokens reach the client as they arrive.
func PassThrough(w io.Writer, r io.Reader, flush func()) (int64, error) {
	buf := make([]byte, 32<<10)
	var total int64
	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			wn, werr := w.Write(buf[:n])
			total += int64(wn)
			if werr != nil {
				return total, werr
			}
			if flush != nil {
				flush()
			}
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				return total, nil
			}
			return total, rerr
		}
	}
}
