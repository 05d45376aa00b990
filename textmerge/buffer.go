package textmerge

import "sync"

// Buffer is the transcript edit buffer. It is owned by the UI: the engine
// only ever supplies raw text that gets folded in through Merge. Writes are
// whole-result swaps, never partial.
type Buffer struct {
	mu     sync.Mutex
	text   string
	cursor int
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

func (b *Buffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

func (b *Buffer) Cursor() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cursor
}

// Set records a direct user edit.
func (b *Buffer) Set(text string, cursor int) {
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(text) {
		cursor = len(text)
	}
	b.mu.Lock()
	b.text = text
	b.cursor = cursor
	b.mu.Unlock()
}

// MergeIn folds an incoming transcript fragment into the buffer at the
// current cursor. chat applies ChatTrim to the fragment before the spacing
// logic runs. Returns the resulting text.
func (b *Buffer) MergeIn(incoming string, mode Mode, chat bool) string {
	if chat {
		incoming = ChatTrim(incoming)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text, b.cursor = Merge(incoming, b.cursor, b.text, mode)
	return b.text
}
