package textmerge

import "testing"

func TestReplaceMode(t *testing.T) {
	text, cur := Merge("fresh text", 3, "old buffer contents", ModeReplace)
	if text != "fresh text" {
		t.Errorf("got %q, want %q", text, "fresh text")
	}
	if cur != len("fresh text") {
		t.Errorf("cursor %d, want %d", cur, len("fresh text"))
	}
}

func TestInsertAtEnd(t *testing.T) {
	text, cur := Merge("world", 5, "hello", ModeInsert)
	if text != "hello world" {
		t.Errorf("got %q, want %q", text, "hello world")
	}
	if cur != 11 {
		t.Errorf("cursor %d, want 11", cur)
	}
}

func TestInsertIntoEmptyBuffer(t *testing.T) {
	text, cur := Merge("hello", 0, "", ModeInsert)
	if text != "hello" {
		t.Errorf("got %q, want %q", text, "hello")
	}
	if cur != 5 {
		t.Errorf("cursor %d, want 5", cur)
	}
}

func TestInsertMiddleAddsBothSpaces(t *testing.T) {
	// Cursor between "hello" and "world" with no space on either side.
	text, cur := Merge("new", 5, "helloworld", ModeInsert)
	if text != "hello new world" {
		t.Errorf("got %q, want %q", text, "hello new world")
	}
	// "hello" + " " + "new" = 9
	if cur != 9 {
		t.Errorf("cursor %d, want 9", cur)
	}
}

func TestNoLeadingSpaceAfterOpener(t *testing.T) {
	text, _ := Merge("quoted", 1, "(", ModeInsert)
	if text != "(quoted" {
		t.Errorf("got %q, want %q", text, "(quoted")
	}
}

func TestNoLeadingSpaceAfterWhitespace(t *testing.T) {
	text, cur := Merge("world", 6, "hello ", ModeInsert)
	if text != "hello world" {
		t.Errorf("got %q, want %q", text, "hello world")
	}
	if cur != 11 {
		t.Errorf("cursor %d, want 11", cur)
	}
}

func TestNoLeadingSpaceBeforePunctuation(t *testing.T) {
	// Incoming starts with a closer: no space wanted before it.
	text, _ := Merge(", then", 5, "hello", ModeInsert)
	if text != "hello, then" {
		t.Errorf("got %q, want %q", text, "hello, then")
	}
}

func TestNoTrailingSpaceBeforePunctuation(t *testing.T) {
	// Text after cursor begins with punctuation: no trailing space.
	text, cur := Merge("there", 5, "hello.", ModeInsert)
	if text != "hello there." {
		t.Errorf("got %q, want %q", text, "hello there.")
	}
	if cur != 11 {
		t.Errorf("cursor %d, want 11", cur)
	}
}

func TestTrailingSpaceBeforeWord(t *testing.T) {
	text, cur := Merge("brave", 0, "world", ModeInsert)
	if text != "brave world" {
		t.Errorf("got %q, want %q", text, "brave world")
	}
	if cur != 5 {
		t.Errorf("cursor %d, want 5", cur)
	}
}

func TestCursorClamped(t *testing.T) {
	text, cur := Merge("x", 99, "ab", ModeInsert)
	if text != "ab x" {
		t.Errorf("got %q, want %q", text, "ab x")
	}
	if cur != 4 {
		t.Errorf("cursor %d, want 4", cur)
	}

	text, cur = Merge("x", -3, "ab", ModeInsert)
	if text != "x ab" {
		t.Errorf("got %q, want %q", text, "x ab")
	}
	if cur != 1 {
		t.Errorf("cursor %d, want 1", cur)
	}
}

func TestEmptyIncomingIsNoop(t *testing.T) {
	text, cur := Merge("", 2, "hello", ModeInsert)
	if text != "hello" || cur != 2 {
		t.Errorf("got (%q, %d), want (hello, 2)", text, cur)
	}
}

func TestMergeIsDeterministic(t *testing.T) {
	inputs := []struct {
		incoming string
		cursor   int
		full     string
	}{
		{"world", 5, "hello"},
		{"a", 0, ""},
		{"mid", 3, "before after"},
		{"héllo", 2, "ü ber"},
	}
	for _, in := range inputs {
		t1, c1 := Merge(in.incoming, in.cursor, in.full, ModeInsert)
		t2, c2 := Merge(in.incoming, in.cursor, in.full, ModeInsert)
		if t1 != t2 || c1 != c2 {
			t.Errorf("Merge(%q, %d, %q) not deterministic", in.incoming, in.cursor, in.full)
		}
		if c1 < 0 || c1 > len(t1) {
			t.Errorf("cursor %d out of bounds for %q", c1, t1)
		}
	}
}

func TestUnicodeBoundary(t *testing.T) {
	// Cursor in the middle of a multi-byte rune must not split it.
	full := "héllo" // é is 2 bytes; byte offset 2 is mid-rune
	text, cur := Merge("x", 2, full, ModeInsert)
	if cur < 0 || cur > len(text) {
		t.Fatalf("cursor %d out of bounds", cur)
	}
	for _, r := range text {
		if r == '�' {
			t.Fatalf("merge split a rune: %q", text)
		}
	}
}

func TestChatTrim(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Hello there.", "Hello there"},
		{"Hello there. ", "Hello there"},
		{"Really?!", "Really"},
		{"done;, ", "done"},
		{"no punctuation", "no punctuation"},
		{"", ""},
		{"...", ""},
	}
	for _, c := range cases {
		if got := ChatTrim(c.in); got != c.want {
			t.Errorf("ChatTrim(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestBufferMergeIn(t *testing.T) {
	b := NewBuffer()
	b.MergeIn("hello", ModeInsert, false)
	b.MergeIn("world", ModeInsert, false)
	if got := b.Text(); got != "hello world" {
		t.Errorf("got %q, want %q", got, "hello world")
	}
	if b.Cursor() != 11 {
		t.Errorf("cursor %d, want 11", b.Cursor())
	}
}

func TestBufferChatMode(t *testing.T) {
	b := NewBuffer()
	b.MergeIn("Send it now.", ModeInsert, true)
	if got := b.Text(); got != "Send it now" {
		t.Errorf("got %q, want %q", got, "Send it now")
	}
}

func TestBufferUserEditMovesCursor(t *testing.T) {
	b := NewBuffer()
	b.Set("one two", 3)
	b.MergeIn("and", ModeInsert, false)
	if got := b.Text(); got != "one and two" {
		t.Errorf("got %q, want %q", got, "one and two")
	}
	if b.Cursor() != 7 {
		t.Errorf("cursor %d, want 7", b.Cursor())
	}
}
