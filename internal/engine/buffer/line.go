package buffer

// Location tells where a line's bytes live.
type Location uint8

const (
	InFile   Location = iota // bytes are in the source at Offset
	InMemory                 // bytes are owned by the line in Data
)

func (l Location) String() string {
	if l == InMemory {
		return "memory"
	}
	return "file"
}

// Attribute is a bitmask of line attributes. They are reserved for
// syntax-aware consumers and never computed by the buffer.
type Attribute uint32

const (
	AttrStartsSpanningComment Attribute = 1 << iota // line opens a spanning comment
	AttrEndsSpanningComment                         // line closes a spanning comment
)

// Line is one logical line of text.
//
// Length is the exact byte count including the terminating newline, except
// for a final line of a source that has none. InFile lengths are in source
// bytes; InMemory lines always hold canonical UTF-8.
type Line struct {
	Location   Location
	Offset     int64  // source offset, InFile only
	Data       []byte // owned text, InMemory only
	Length     int
	Attributes Attribute
}

// NewFileLine returns a line located in the source.
func NewFileLine(offset int64, length int) Line {
	return Line{Location: InFile, Offset: offset, Length: length}
}

// NewMemoryLine returns a line holding text. With copyText set the text is
// duplicated, otherwise the line takes ownership of the caller's slice.
func NewMemoryLine(text []byte, copyText bool) Line {
	data := text
	if copyText {
		data = append(make([]byte, 0, len(text)), text...)
	}
	return Line{Location: InMemory, Data: data, Length: len(data)}
}

// End returns the source offset just past the line.
func (l Line) End() int64 {
	return l.Offset + int64(l.Length)
}
