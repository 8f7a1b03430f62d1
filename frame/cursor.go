package frame

import "github.com/go-gl/mathgl/mgl32"

// CursorStyle is the terminal cursor shape used to size the cursor rect.
type CursorStyle int

const (
	CursorBlock CursorStyle = iota
	CursorBar
	CursorUnderline
	CursorHidden
)

func (s CursorStyle) String() string {
	switch s {
	case CursorBlock:
		return "block"
	case CursorBar:
		return "bar"
	case CursorUnderline:
		return "underline"
	case CursorHidden:
		return "hidden"
	}
	return "unknown"
}

// Next cycles block, bar, underline, hidden and back to block.
func (s CursorStyle) Next() CursorStyle {
	return (s + 1) % (CursorHidden + 1)
}

// GridPos is a cell position, column first.
type GridPos struct {
	Col, Row int
}

// Snapshot is one recorded cursor state.
type Snapshot struct {
	Pos     GridPos
	Color   mgl32.Vec4
	Opacity float32
	Style   CursorStyle
	// Timestamp is the animation time at which this state became current.
	Timestamp float32
}

func (s Snapshot) sameState(o Snapshot) bool {
	return s.Pos == o.Pos && s.Color == o.Color && s.Opacity == o.Opacity && s.Style == o.Style
}

func defaultSnapshot() Snapshot {
	return Snapshot{
		Color:   mgl32.Vec4{1, 1, 1, 1},
		Opacity: 1,
		Style:   CursorBlock,
	}
}
