package waveform

// LayoutMode picks the visualization silhouette from the viewport size.
type LayoutMode int

const (
	LayoutExpanded LayoutMode = iota
	LayoutCollapsed
	LayoutHorizontallyCollapsed
)

func (m LayoutMode) String() string {
	switch m {
	case LayoutExpanded:
		return "expanded"
	case LayoutCollapsed:
		return "collapsed"
	case LayoutHorizontallyCollapsed:
		return "horizontally-collapsed"
	default:
		return "unknown"
	}
}

const collapseThreshold = 72

// LayoutFor is a pure function of the viewport. A short viewport collapses
// horizontally and takes precedence over a narrow one.
func LayoutFor(width, height float64) LayoutMode {
	if height < collapseThreshold {
		return LayoutHorizontallyCollapsed
	}
	if width < collapseThreshold {
		return LayoutCollapsed
	}
	return LayoutExpanded
}
