//go:build gui

package gui

import (
	"image"
	"image/color"
	"math"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"musevoice/session"
	"musevoice/waveform"
)

const (
	ribbonWidth  = 352
	ribbonHeight = 96
)

// RibbonWidget paints the live waveform as a filled symmetric polygon,
// tinted by loudness. While processing it swaps to orbiting dots, and
// below the layout thresholds it collapses into a circular badge.
type RibbonWidget struct {
	widget.BaseWidget

	mu     sync.Mutex
	frame  waveform.Frame
	status session.Status
	anim   waveform.Anim
	cfg    waveform.Config
	stopCh chan struct{}
}

func NewRibbonWidget(cfg waveform.Config) *RibbonWidget {
	r := &RibbonWidget{
		cfg:    cfg,
		status: session.StatusLoading,
		stopCh: make(chan struct{}),
	}
	r.ExtendBaseWidget(r)
	go r.animate()
	return r
}

func (r *RibbonWidget) SetFrame(f waveform.Frame) {
	r.mu.Lock()
	r.frame = f
	r.mu.Unlock()
}

func (r *RibbonWidget) SetStatus(st session.Status) {
	r.mu.Lock()
	r.status = st
	if st != session.StatusRecording {
		r.frame = waveform.Frame{}
	}
	r.mu.Unlock()
}

func (r *RibbonWidget) Stop() {
	select {
	case <-r.stopCh:
	default:
		close(r.stopCh)
	}
}

func (r *RibbonWidget) animate() {
	ticker := time.NewTicker(33 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.mu.Lock()
			r.anim.Advance(time.Now(), r.cfg.DotStepHz)
			r.mu.Unlock()
			fyne.Do(func() {
				r.Refresh()
			})
		}
	}
}

func (r *RibbonWidget) MinSize() fyne.Size {
	return fyne.NewSize(ribbonWidth, ribbonHeight)
}

func (r *RibbonWidget) CreateRenderer() fyne.WidgetRenderer {
	raster := canvas.NewRaster(r.draw)
	return &ribbonRenderer{ribbon: r, raster: raster}
}

type ribbonRenderer struct {
	ribbon *RibbonWidget
	raster *canvas.Raster
}

func (rr *ribbonRenderer) Layout(size fyne.Size) {
	rr.raster.Resize(size)
}

func (rr *ribbonRenderer) MinSize() fyne.Size {
	return rr.ribbon.MinSize()
}

func (rr *ribbonRenderer) Refresh() {
	rr.raster.Refresh()
}

func (rr *ribbonRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{rr.raster}
}

func (rr *ribbonRenderer) Destroy() {
	rr.ribbon.Stop()
}

// draw renders one frame of the widget at the given pixel size.
func (r *RibbonWidget) draw(w, h int) image.Image {
	r.mu.Lock()
	frame := r.frame
	status := r.status
	phase := r.anim.Phase
	cfg := r.cfg
	r.mu.Unlock()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return img
	}

	level := frame.Level(cfg.FloorDB)
	bg := waveform.Grade(cfg.BgCold, cfg.BgHot, level)
	line := waveform.Grade(cfg.LineCold, cfg.LineHot, level)

	layout := waveform.LayoutFor(float64(w), float64(h))
	cx, cy := float64(w)/2, float64(h)/2
	var clip badgeClip
	if layout != waveform.LayoutExpanded {
		clip = badgeClip{cx: cx, cy: cy, r: math.Min(cx, cy)}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !clip.contains(x, y) {
				continue // transparent outside the badge circle
			}
			img.SetRGBA(x, y, bg)
		}
	}

	if status == session.StatusProcessing {
		r.drawDots(img, w, h, phase, line, cfg.DotCount)
		return img
	}

	points := waveform.Ribbon(frame.Bins, float64(w), float64(h), cfg.MinHalf, cfg.FloorDB)
	fillRibbon(img, points, w, h, line, clip)
	return img
}

// badgeClip limits drawing to the circular badge silhouette in
// collapsed layouts. A zero radius means no clipping.
type badgeClip struct {
	cx, cy, r float64
}

func (b badgeClip) contains(x, y int) bool {
	if b.r == 0 {
		return true
	}
	dx, dy := float64(x)-b.cx, float64(y)-b.cy
	return dx*dx+dy*dy <= b.r*b.r
}

// fillRibbon paints the polygon column by column between its top and
// bottom edges, honoring the badge clip.
func fillRibbon(img *image.RGBA, points []waveform.Point, w, h int, c color.RGBA, clip badgeClip) {
	top := make([]int, w)
	bottom := make([]int, w)
	for x := range top {
		top[x] = h
		bottom[x] = -1
	}
	for _, p := range points {
		x := int(math.Round(p.X))
		if x < 0 || x >= w {
			continue
		}
		y := int(math.Round(p.Y))
		if y < 0 {
			y = 0
		}
		if y >= h {
			y = h - 1
		}
		if y < top[x] {
			top[x] = y
		}
		if y > bottom[x] {
			bottom[x] = y
		}
	}
	for x := 0; x < w; x++ {
		for y := top[x]; y <= bottom[x]; y++ {
			if !clip.contains(x, y) {
				continue
			}
			img.SetRGBA(x, y, c)
		}
	}
}

func (r *RibbonWidget) drawDots(img *image.RGBA, w, h int, phase float64, c color.RGBA, count int) {
	angles := waveform.DotAngles(phase, count)
	cx, cy := float64(w)/2, float64(h)/2
	orbit := math.Min(cx, cy) * 0.5
	dotR := math.Max(2, math.Min(cx, cy)*0.12)

	for _, a := range angles {
		ox := cx + math.Cos(a)*orbit
		oy := cy + math.Sin(a)*orbit
		for y := int(oy - dotR); y <= int(oy+dotR); y++ {
			for x := int(ox - dotR); x <= int(ox+dotR); x++ {
				if x < 0 || x >= w || y < 0 || y >= h {
					continue
				}
				dx, dy := float64(x)-ox, float64(y)-oy
				if dx*dx+dy*dy <= dotR*dotR {
					img.SetRGBA(x, y, c)
				}
			}
		}
	}
}
