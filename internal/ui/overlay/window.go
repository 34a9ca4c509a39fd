package overlay

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Config defines overlay visuals.
type Config struct {
	Opacity uint8
}

// DefaultConfig returns the overlay visuals used when nothing is configured.
func DefaultConfig() Config {
	return Config{Opacity: 217}
}

// Window is the alarm overlay shown when the countdown runs out.
type Window struct {
	app           fyne.App
	window        fyne.Window
	timerLabel    *canvas.Text
	titleLabel    *canvas.Text
	subtitleLabel *canvas.Text
	silenceButton *widget.Button
	resetButton   *widget.Button
	background    *canvas.Rectangle
	onSilence     func()
	onReset       func()
	visible       bool
}

const (
	overlayWidthFraction  = float32(0.18)
	overlayHeightFraction = float32(0.20)
	defaultScreenWidth    = float32(1920)
	defaultScreenHeight   = float32(1080)
)

var (
	alarmColor   = color.NRGBA{R: 224, G: 72, B: 60, A: 255}
	silentColor  = color.NRGBA{R: 232, G: 190, B: 66, A: 255}
	captionColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// New creates the overlay window. It stays hidden until Show.
func New(app fyne.App, config Config) *Window {
	window := app.NewWindow("WarTally")
	if driver, ok := app.Driver().(splashWindowDriver); ok {
		// Splash window is undecorated (no native frame/buttons).
		window = driver.CreateSplashWindow()
	}
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}
	window.SetPadded(false)

	background := canvas.NewRectangle(color.NRGBA{A: config.Opacity})

	titleLabel := canvas.NewText("Time is up", captionColor)
	titleLabel.Alignment = fyne.TextAlignLeading
	titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	titleLabel.TextSize = 21

	subtitleLabel := canvas.NewText("", captionColor)
	subtitleLabel.Alignment = fyne.TextAlignLeading
	subtitleLabel.TextSize = 14

	timerLabel := canvas.NewText("00:00", alarmColor)
	timerLabel.Alignment = fyne.TextAlignLeading
	timerLabel.TextStyle = fyne.TextStyle{Monospace: true}
	timerLabel.TextSize = 28

	silenceButton := widget.NewButton("Silence", nil)
	resetButton := widget.NewButton("Reset", nil)
	resetButton.Importance = widget.HighImportance

	buttons := container.NewGridWithColumns(2, silenceButton, resetButton)
	content := container.New(&panelLayout{}, titleLabel, subtitleLabel, timerLabel, buttons)
	window.SetContent(container.NewStack(background, content))

	overlay := &Window{
		app:           app,
		window:        window,
		timerLabel:    timerLabel,
		titleLabel:    titleLabel,
		subtitleLabel: subtitleLabel,
		silenceButton: silenceButton,
		resetButton:   resetButton,
		background:    background,
	}

	silenceButton.OnTapped = func() {
		if overlay.onSilence != nil {
			overlay.onSilence()
		}
	}
	resetButton.OnTapped = func() {
		if overlay.onReset != nil {
			overlay.onReset()
		}
	}
	window.SetCloseIntercept(func() {
		overlay.Hide()
		if overlay.onSilence != nil {
			overlay.onSilence()
		}
	})

	overlay.setAlarmingUnsafe(true)
	return overlay
}

// Show raises the overlay with the final clock display.
func (overlay *Window) Show(display string) {
	overlay.timerLabel.Text = display
	overlay.timerLabel.Refresh()
	overlay.setAlarmingUnsafe(true)
	overlay.window.SetFullScreen(false)
	overlay.resizeToScreenFraction()
	overlay.visible = true
	overlay.window.Show()
	overlay.window.RequestFocus()
}

// Hide closes the overlay.
func (overlay *Window) Hide() {
	overlay.visible = false
	overlay.window.Hide()
}

// Visible reports whether the overlay is currently shown.
func (overlay *Window) Visible() bool {
	return overlay.visible
}

// SetAlarming switches between the ringing and silenced captions.
func (overlay *Window) SetAlarming(alarming bool) {
	overlay.setAlarmingUnsafe(alarming)
}

// SetOnSilence sets the silence handler. Closing the window also silences.
func (overlay *Window) SetOnSilence(handler func()) {
	overlay.onSilence = handler
}

// SetOnReset sets the reset handler.
func (overlay *Window) SetOnReset(handler func()) {
	overlay.onReset = handler
}

func (overlay *Window) setAlarmingUnsafe(alarming bool) {
	if alarming {
		overlay.subtitleLabel.Text = "The round clock has run out"
		overlay.timerLabel.Color = alarmColor
		overlay.silenceButton.Enable()
	} else {
		overlay.subtitleLabel.Text = "Alarm silenced"
		overlay.timerLabel.Color = silentColor
		overlay.silenceButton.Disable()
	}
	overlay.subtitleLabel.Refresh()
	overlay.timerLabel.Refresh()
}

func (overlay *Window) resizeToScreenFraction() {
	screenSize := fyne.NewSize(defaultScreenWidth, defaultScreenHeight)
	canvasSize := overlay.window.Canvas().Size()
	// Canvas size can be reused as a proxy for monitor size when it is clearly screen-like.
	if canvasSize.Width >= 1024 && canvasSize.Height >= 720 {
		screenSize = canvasSize
	}

	width := screenSize.Width * overlayWidthFraction
	height := screenSize.Height * overlayHeightFraction
	minSize := overlay.window.Content().MinSize()
	if width < minSize.Width {
		width = minSize.Width
	}
	if height < minSize.Height {
		height = minSize.Height
	}

	overlay.window.Resize(fyne.NewSize(width, height))
	overlay.window.CenterOnScreen()
}

// panelLayout stacks title, subtitle and timer at the top and pins the buttons to the bottom.
type panelLayout struct{}

func (layout *panelLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) < 4 {
		return
	}
	title := objects[0]
	subtitle := objects[1]
	timer := objects[2]
	buttons := objects[3]

	pad := size.Height * 0.06
	availableWidth := size.Width - pad*2
	if availableWidth < 0 {
		availableWidth = 0
	}

	titleSize := title.MinSize()
	title.Move(fyne.NewPos(pad, pad))
	title.Resize(fyne.NewSize(availableWidth, titleSize.Height))

	subtitleSize := subtitle.MinSize()
	subtitleY := pad + titleSize.Height + 6
	subtitle.Move(fyne.NewPos(pad, subtitleY))
	subtitle.Resize(fyne.NewSize(availableWidth, subtitleSize.Height))

	timerSize := timer.MinSize()
	timerY := subtitleY + subtitleSize.Height + 8
	timer.Move(fyne.NewPos(pad, timerY))
	timer.Resize(timerSize)

	buttonsSize := buttons.MinSize()
	buttonsY := size.Height - pad - buttonsSize.Height
	if buttonsY < timerY+timerSize.Height {
		buttonsY = timerY + timerSize.Height
	}
	buttons.Move(fyne.NewPos(pad, buttonsY))
	buttons.Resize(fyne.NewSize(availableWidth, buttonsSize.Height))
}

func (layout *panelLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	if len(objects) < 4 {
		return fyne.NewSize(0, 0)
	}
	width := float32(0)
	height := float32(0)
	for _, object := range objects[:4] {
		size := object.MinSize()
		if size.Width > width {
			width = size.Width
		}
		height += size.Height
	}
	return fyne.NewSize(width+20, height+40)
}
