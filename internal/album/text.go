package album

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Text is a piece of text with an overridable ASCII representation.
// In the manifest it is either a plain scalar or a mapping with "text"
// and an optional "ascii" key.
type Text struct {
	text  string
	ascii string
}

// NewText creates a Text without an ASCII override.
func NewText(text string) Text {
	return Text{text: text}
}

// TextWithASCII creates a Text with an explicit ASCII representation.
func TextWithASCII(text, ascii string) Text {
	return Text{text: text, ascii: ascii}
}

// Value returns the full text value.
func (t Text) Value() string {
	return t.text
}

// IsZero reports whether the text is empty.
func (t Text) IsZero() bool {
	return t.text == "" && t.ascii == ""
}

// ASCII returns the ASCII representation. If it hasn't been overridden,
// any non-ASCII runes in the text are replaced with '?'.
func (t Text) ASCII() string {
	if t.ascii != "" {
		return t.ascii
	}
	isASCII := true
	for _, r := range t.text {
		if r > 127 {
			isASCII = false
			break
		}
	}
	if isASCII {
		return t.text
	}
	var b strings.Builder
	b.Grow(len(t.text))
	for _, r := range t.text {
		if r > 127 {
			b.WriteByte('?')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FileSafe returns a version of the text usable in filenames on every
// supported OS. It works on the ASCII representation and substitutes the
// characters that at least one filesystem rejects:
//
//	<  ->  [        >  ->  ]        "  ->  '
//	/ | ~  ->  -    \ *  ->  _      ?  ->  (dropped)
//	": " -> " - "   ":"  ->  "-"
//
// Control characters are dropped.
func (t Text) FileSafe() string {
	ascii := t.ASCII()
	if !strings.ContainsAny(ascii, fileUnsafeChars) && !containsControl(ascii) {
		return ascii
	}
	var b strings.Builder
	b.Grow(len(ascii))
	for i := 0; i < len(ascii); i++ {
		c := ascii[i]
		switch c {
		case '<':
			b.WriteByte('[')
		case '>':
			b.WriteByte(']')
		case ':':
			if i+1 < len(ascii) && ascii[i+1] == ' ' {
				b.WriteString(" -")
			} else {
				b.WriteByte('-')
			}
		case '"':
			b.WriteByte('\'')
		case '/', '|', '~':
			b.WriteByte('-')
		case '\\', '*':
			b.WriteByte('_')
		case '?':
		default:
			if c >= 0x20 && c != 0x7f {
				b.WriteByte(c)
			}
		}
	}
	return b.String()
}

const fileUnsafeChars = `<>:"/|~\*?`

func containsControl(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] == 0x7f {
			return true
		}
	}
	return false
}

var articleRe = regexp.MustCompile(`^(?i)(the|an|a)\s(.*)$`)

// SortableFileSafe is FileSafe with a leading article moved to the end,
// so names sort alphabetically ("The Title" -> "Title, The").
func (t Text) SortableFileSafe() string {
	fs := t.FileSafe()
	m := articleRe.FindStringSubmatch(fs)
	if m == nil {
		return fs
	}
	return m[2] + ", " + m[1]
}

// JoinTexts joins several texts with ", ", preserving ASCII overrides.
func JoinTexts(texts []Text) Text {
	if len(texts) == 1 {
		return texts[0]
	}
	var text, ascii strings.Builder
	hasOverride := false
	for i, t := range texts {
		if i != 0 {
			text.WriteString(", ")
			ascii.WriteString(", ")
		}
		text.WriteString(t.Value())
		ascii.WriteString(t.ASCII())
		if t.ASCII() != t.Value() {
			hasOverride = true
		}
	}
	if !hasOverride {
		return NewText(text.String())
	}
	return TextWithASCII(text.String(), ascii.String())
}

// UnmarshalYAML parses either a scalar or a {text, ascii} mapping.
func (t *Text) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*t = NewText(s)
		return nil
	case yaml.MappingNode:
		var aux struct {
			Text  string `yaml:"text"`
			ASCII string `yaml:"ascii"`
		}
		if err := node.Decode(&aux); err != nil {
			return err
		}
		if aux.Text == "" {
			return fmt.Errorf("line %d: text mapping is missing a \"text\" key", node.Line)
		}
		*t = Text{text: aux.Text, ascii: aux.ASCII}
		return nil
	default:
		return fmt.Errorf("line %d: text must be a string or a mapping", node.Line)
	}
}

// MarshalYAML emits a plain scalar unless the ASCII form is overridden.
func (t Text) MarshalYAML() (interface{}, error) {
	if t.ascii == "" {
		return t.text, nil
	}
	return struct {
		Text  string `yaml:"text"`
		ASCII string `yaml:"ascii"`
	}{Text: t.text, ASCII: t.ascii}, nil
}
