// Package markup inserts pause, emphasis and rate annotations into the text
// being composed, honoring the current cursor and selection.
//
// Offsets are character (rune) offsets into the text. A selection is the
// half-open range [start, end); when there is none the caret sits at the end
// of the text.
package markup

import "fmt"

// Placeholder is wrapped when the selection is empty.
const Placeholder = "texto"

// Buffer is an editable text with a selection.
type Buffer interface {
	Text() string
	SetText(text string)
	// Selection returns the current range, or ok == false when there is none.
	Selection() (start, end int, ok bool)
	Select(start, end int)
}

// InsertAtCursor replaces the selection with tag and puts the caret right after it.
func InsertAtCursor(buf Buffer, tag string) {
	text := []rune(buf.Text())
	start, end := selection(buf, len(text))

	ins := []rune(tag)
	buf.SetText(splice(text, start, end, ins))

	caret := start + len(ins)
	buf.Select(caret, caret)
}

// WrapSelection encloses the selected text, or Placeholder if nothing is
// selected, between left and right. The enclosed text stays selected.
func WrapSelection(buf Buffer, left, right string) {
	text := []rune(buf.Text())
	start, end := selection(buf, len(text))

	inner := text[start:end]
	if len(inner) == 0 {
		inner = []rune(Placeholder)
	}

	l := []rune(left)

	wrapped := make([]rune, 0, len(l)+len(inner)+len(right))
	wrapped = append(wrapped, l...)
	wrapped = append(wrapped, inner...)
	wrapped = append(wrapped, []rune(right)...)

	buf.SetText(splice(text, start, end, wrapped))

	innerStart := start + len(l)
	buf.Select(innerStart, innerStart+len(inner))
}

// selection returns the buffer's range clamped to [0, n] with start <= end.
func selection(buf Buffer, n int) (int, int) {
	start, end, ok := buf.Selection()
	if !ok {
		return n, n
	}

	start = clamp(start, n)
	end = clamp(end, n)
	if start > end {
		start, end = end, start
	}
	return start, end
}

func clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if v > n {
		return n
	}
	return v
}

func splice(text []rune, start, end int, ins []rune) string {
	out := make([]rune, 0, len(text)-(end-start)+len(ins))
	out = append(out, text[:start]...)
	out = append(out, ins...)
	out = append(out, text[end:]...)
	return string(out)
}

// Action is a named annotation.
type Action string

// Annotations offered by the editor.
const (
	Break       Action = "break"
	Emphasis    Action = "emphasis"
	ProsodySlow Action = "slow"
	ProsodyFast Action = "fast"
)

// BreakTag is inserted by the Break action.
const BreakTag = `<break time="400ms"> `

// Actions lists the annotations in toolbar order.
var Actions = []Action{Break, Emphasis, ProsodySlow, ProsodyFast}

// ParseAction converts a name to an Action.
func ParseAction(name string) (Action, error) {
	for _, a := range Actions {
		if string(a) == name {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown markup action %q", name)
}

// Apply performs action on buf.
func Apply(buf Buffer, action Action) error {
	switch action {
	case Break:
		InsertAtCursor(buf, BreakTag)
	case Emphasis:
		WrapSelection(buf, "<emphasis>", "</emphasis>")
	case ProsodySlow:
		WrapSelection(buf, `<prosody rate="slow">`, "</prosody>")
	case ProsodyFast:
		WrapSelection(buf, `<prosody rate="fast">`, "</prosody>")
	default:
		return fmt.Errorf("unknown markup action %q", action)
	}
	return nil
}

// Range is a selection.
type Range struct {
	Start, End int
}

// Text is a standalone Buffer.
type Text struct {
	Value string
	Sel   *Range
}

// NewText creates a Text with no selection.
func NewText(value string) *Text {
	return &Text{Value: value}
}

// Text returns the buffer contents.
func (t *Text) Text() string { return t.Value }

// SetText replaces the buffer contents.
func (t *Text) SetText(text string) { t.Value = text }

// Selection returns the selected range, if any.
func (t *Text) Selection() (int, int, bool) {
	if t.Sel == nil {
		return 0, 0, false
	}
	return t.Sel.Start, t.Sel.End, true
}

// Select sets the selected range.
func (t *Text) Select(start, end int) {
	t.Sel = &Range{Start: start, End: end}
}
