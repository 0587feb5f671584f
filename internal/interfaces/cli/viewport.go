package cli

import (
	"fmt"
)

// Viewport keeps the cursor row inside a window of visible rows.
type Viewport struct {
	Offset      int
	VisibleRows int
	TotalRows   int
	CursorIndex int
}

func NewViewport(cursor, total, height int) *Viewport {
	v := &Viewport{
		VisibleRows: max(1, height),
		TotalRows:   total,
		CursorIndex: cursor,
	}
	v.EnsureCursorVisible()
	return v
}

func (v *Viewport) EnsureCursorVisible() {
	if v.CursorIndex < v.Offset {
		v.Offset = v.CursorIndex
	}
	if v.CursorIndex >= v.Offset+v.VisibleRows {
		v.Offset = v.CursorIndex - v.VisibleRows + 1
	}
	v.Offset = min(max(0, v.Offset), max(0, v.TotalRows-v.VisibleRows))
}

func (v *Viewport) VisibleStart() int {
	return v.Offset
}

func (v *Viewport) VisibleEnd() int {
	return min(v.Offset+v.VisibleRows, v.TotalRows)
}

// Indicator is the "rows a-b of n" footer, empty when everything fits.
func (v *Viewport) Indicator() string {
	if v.TotalRows <= v.VisibleRows {
		return ""
	}
	return ScrollIndicatorStyle.Render(fmt.Sprintf("rows %d-%d of %d", v.VisibleStart()+1, v.VisibleEnd(), v.TotalRows))
}

func clampCursor(cursor, total int) int {
	if total == 0 {
		return 0
	}
	return min(max(0, cursor), total-1)
}
