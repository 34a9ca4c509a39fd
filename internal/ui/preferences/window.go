package preferences

import (
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Window handles the preferences UI.
type Window struct {
	window       fyne.Window
	settings     Settings
	minutes      int
	onSave       func(Settings, int)
	duration     *widget.Entry
	soundCheck   *widget.Check
	hapticCheck  *widget.Check
	overlayCheck *widget.Check
	trayCheck    *widget.Check
}

// New creates a preferences window. minutes is the current clock duration.
func New(app fyne.App, settings Settings, minutes int, onSave func(Settings, int)) *Window {
	window := app.NewWindow("WarTally Settings")

	duration := widget.NewEntry()
	duration.SetText(strconv.Itoa(minutes))

	soundCheck := widget.NewCheck("Play chimes and alarm", nil)
	soundCheck.SetChecked(settings.SoundEnabled)

	hapticCheck := widget.NewCheck("Vibrate on alarm (where supported)", nil)
	hapticCheck.SetChecked(settings.HapticEnabled)

	overlayCheck := widget.NewCheck("Show alarm overlay when time runs out", nil)
	overlayCheck.SetChecked(settings.AlarmOverlay)

	trayCheck := widget.NewCheck("Keep running in the tray when the board is closed", nil)
	trayCheck.SetChecked(settings.AlwaysShowTray)

	form := container.NewVBox(
		widget.NewLabelWithStyle("Clock", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Round length"), duration, widget.NewLabel("min (1-60)")),
		widget.NewLabelWithStyle("Alerts", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		soundCheck,
		hapticCheck,
		overlayCheck,
		widget.NewLabelWithStyle("Window", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		trayCheck,
	)

	saveButton := widget.NewButton("Save", nil)
	cancelButton := widget.NewButton("Cancel", nil)
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	content := container.NewBorder(nil, buttons, nil, nil, form)
	window.SetContent(content)
	window.Resize(fyne.NewSize(420, 320))
	window.SetCloseIntercept(func() {
		window.Hide()
	})

	prefs := &Window{
		window:       window,
		settings:     settings,
		minutes:      minutes,
		onSave:       onSave,
		duration:     duration,
		soundCheck:   soundCheck,
		hapticCheck:  hapticCheck,
		overlayCheck: overlayCheck,
		trayCheck:    trayCheck,
	}

	saveButton.OnTapped = prefs.handleSave
	cancelButton.OnTapped = prefs.handleCancel

	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

func (prefs *Window) handleCancel() {
	prefs.UpdateSettings(prefs.settings, prefs.minutes)
	prefs.window.Hide()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings, minutes int) {
	prefs.settings = settings
	prefs.minutes = minutes
	prefs.duration.SetText(strconv.Itoa(minutes))
	prefs.soundCheck.SetChecked(settings.SoundEnabled)
	prefs.hapticCheck.SetChecked(settings.HapticEnabled)
	prefs.overlayCheck.SetChecked(settings.AlarmOverlay)
	prefs.trayCheck.SetChecked(settings.AlwaysShowTray)
}

func (prefs *Window) handleSave() {
	settings := prefs.settings
	minutes := prefs.minutes

	if parsed, ok := parseMinutes(prefs.duration.Text); ok {
		minutes = parsed
	}

	settings.SoundEnabled = prefs.soundCheck.Checked
	settings.HapticEnabled = prefs.hapticCheck.Checked
	settings.AlarmOverlay = prefs.overlayCheck.Checked
	settings.AlwaysShowTray = prefs.trayCheck.Checked

	prefs.settings = settings
	prefs.minutes = minutes
	if prefs.onSave != nil {
		prefs.onSave(settings, minutes)
	}
	prefs.window.Hide()
}

// parseMinutes accepts any integer; the clock clamps it to its supported range.
func parseMinutes(value string) (int, bool) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, false
	}
	return parsed, true
}
