//go:build gui

package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/go-gl/glfw/v3.3/glfw"

	"musevoice/session"
	"musevoice/waveform"
)

type App struct {
	fyneApp fyne.App
	window  fyne.Window
	ribbon  *RibbonWidget
	onReady func()
	onQuit  func()
	posX    int
	posY    int
}

func NewApp(onReady, onQuit func()) *App {
	return &App{onReady: onReady, onQuit: onQuit}
}

func Run(a *App, cfg waveform.Config) error {
	a.fyneApp = app.NewWithID("io.musevoice.app")
	a.fyneApp.Settings().SetTheme(&darkTheme{})

	if desk, ok := a.fyneApp.(desktop.App); ok {
		icon := fyne.NewStaticResource("tray.png", trayIcon())
		menu := fyne.NewMenu("musevoice",
			fyne.NewMenuItem("Quit", func() {
				if a.onQuit != nil {
					a.onQuit()
				}
				a.fyneApp.Quit()
			}),
		)
		desk.SetSystemTrayMenu(menu)
		desk.SetSystemTrayIcon(icon)
	}

	// Primary monitor work area, used to dock the ribbon bottom-center.
	var screenW, screenH int
	monitor := glfw.GetPrimaryMonitor()
	if monitor != nil {
		_, _, screenW, screenH = monitor.GetWorkarea()
	} else {
		screenW, screenH = 1920, 1080 // fallback
	}

	if drv, ok := a.fyneApp.Driver().(desktop.Driver); ok {
		a.window = drv.CreateSplashWindow()
	} else {
		a.window = a.fyneApp.NewWindow("musevoice")
	}

	a.ribbon = NewRibbonWidget(cfg)

	a.window.SetContent(a.ribbon)
	a.window.SetFixedSize(true)
	a.window.SetPadded(false)

	size := a.ribbon.MinSize()
	a.window.Resize(size)

	a.posX = (screenW - int(size.Width)) / 2
	a.posY = screenH - int(size.Height) - 20

	go a.onReady()

	// Event loop runs with the window hidden until recording starts.
	a.fyneApp.Run()
	a.ribbon.Stop()
	return nil
}

func (a *App) Quit() {
	if a.fyneApp != nil {
		a.fyneApp.Quit()
	}
}

func (a *App) Show() {
	fyne.Do(func() {
		if a.window == nil {
			return
		}

		// Position and float the window before it becomes visible so it
		// never steals focus from the app being dictated into.
		if glfwWin := glfw.GetCurrentContext(); glfwWin != nil {
			glfwWin.SetPos(a.posX, a.posY)
			glfwWin.SetAttrib(glfw.FocusOnShow, glfw.False)
			glfwWin.SetAttrib(glfw.Floating, glfw.True)
			glfwWin.Show()
		} else {
			a.window.Show()
		}
	})
}

func (a *App) Hide() {
	fyne.Do(func() {
		if a.window != nil {
			a.window.Hide()
		}
	})
}

// Display implementation. The ribbon's Set* methods take their own lock,
// so no fyne.Do is needed here.

func (a *App) Status(st session.Status) {
	a.ribbon.SetStatus(st)
	switch st {
	case session.StatusRecording, session.StatusProcessing:
		a.Show()
	default:
		a.Hide()
	}
}

func (a *App) SampleCount(n int) {}

func (a *App) Waveform(f waveform.Frame) {
	a.ribbon.SetFrame(f)
}

func (a *App) Transcript(text string, copied bool) {
	a.Hide()
}

func (a *App) Error(message string) {}

func (a *App) RetryAvailable(ok bool) {}
