// Package board renders the main game board: the round clock and every counter.
package board

import (
	"errors"
	"image/color"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"wartally/internal/core/countdown"
	"wartally/internal/core/counters"
	"wartally/internal/core/model"
	"wartally/internal/core/timekeeper"
)

// Commands is what the board can ask of the session.
type Commands interface {
	TogglePause()
	Reset()
	Silence()
	Adjust(ref string, delta int) (model.Counter, bool)
	ResetCounter(ref string) (model.Counter, bool)
	ResetAll()
	SetCommandPoints(input string) model.Counter
	AddCustom(name, defaultInput string) (model.Counter, error)
	RemoveCustom(id int) bool
	SetVisibility(section string, visible bool)
}

var (
	normalColor  = color.NRGBA{R: 235, G: 235, B: 235, A: 255}
	warningColor = color.NRGBA{R: 232, G: 190, B: 66, A: 255}
	dangerColor  = color.NRGBA{R: 224, G: 72, B: 60, A: 255}
)

// Window is the main board window. Apply and Render must run on the fyne goroutine.
type Window struct {
	window       fyne.Window
	commands     Commands
	timerLabel   *canvas.Text
	toggleButton *widget.Button
	resetButton  *widget.Button
	silenceBtn   *widget.Button
	rowsBox      *fyne.Container
	rows         map[string]*counterRow
	visibility   map[string]bool
	nameEntry    *widget.Entry
	defaultEntry *widget.Entry
	addError     *widget.Label
}

type counterRow struct {
	counter     model.Counter
	root        *fyne.Container
	body        *fyne.Container
	check       *widget.Check
	valueLabel  *widget.Label
	minusBtn    *widget.Button
	plusBtn     *widget.Button
	resetBtn    *widget.Button
	commandText *widget.Entry
	removeBtn   *widget.Button
	syncing     bool
}

// New builds the board for view. The window is not shown.
func New(app fyne.App, commands Commands, view timekeeper.View) *Window {
	window := app.NewWindow("WarTally")

	board := &Window{
		window:     window,
		commands:   commands,
		rows:       make(map[string]*counterRow),
		visibility: make(map[string]bool),
	}

	board.timerLabel = canvas.NewText("--:--", normalColor)
	board.timerLabel.Alignment = fyne.TextAlignCenter
	board.timerLabel.TextStyle = fyne.TextStyle{Monospace: true}
	board.timerLabel.TextSize = 48

	board.toggleButton = widget.NewButton("Start", commands.TogglePause)
	board.toggleButton.Importance = widget.HighImportance
	board.resetButton = widget.NewButton("Reset", commands.Reset)
	board.silenceBtn = widget.NewButton("Silence", commands.Silence)
	board.silenceBtn.Disable()

	clockBox := container.NewVBox(
		board.timerLabel,
		container.NewGridWithColumns(3, board.toggleButton, board.resetButton, board.silenceBtn),
	)

	board.rowsBox = container.NewVBox()

	board.nameEntry = widget.NewEntry()
	board.nameEntry.SetPlaceHolder("Tracker name")
	board.defaultEntry = widget.NewEntry()
	board.defaultEntry.SetPlaceHolder(strconv.Itoa(model.DefaultCustomValue))
	board.addError = widget.NewLabel("")
	board.addError.Importance = widget.DangerImportance
	board.addError.Hide()
	addButton := widget.NewButton("Add tracker", board.handleAdd)
	board.nameEntry.OnSubmitted = func(string) { board.handleAdd() }

	addBox := container.NewVBox(
		widget.NewLabelWithStyle("Custom tracker", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewBorder(nil, nil, nil, addButton,
			container.NewGridWithColumns(2, board.nameEntry, board.defaultEntry)),
		board.addError,
	)

	resetAll := widget.NewButton("Reset all counters", commands.ResetAll)

	content := container.NewBorder(
		clockBox,
		container.NewVBox(widget.NewSeparator(), addBox, resetAll),
		nil, nil,
		container.NewVScroll(board.rowsBox),
	)
	window.SetContent(container.NewPadded(content))
	window.Resize(fyne.NewSize(420, 640))

	board.Render(view)
	return board
}

// Window returns the underlying fyne window.
func (board *Window) Window() fyne.Window {
	return board.window
}

// Show displays the board.
func (board *Window) Show() {
	board.window.Show()
	board.window.RequestFocus()
}

// Render replaces the whole board with view.
func (board *Window) Render(view timekeeper.View) {
	board.visibility = make(map[string]bool, len(view.Visibility))
	for key, visible := range view.Visibility {
		board.visibility[key] = visible
	}
	board.setClock(view.Clock)
	board.setCounters(view.Counters)
}

// Apply updates the board with a single keeper event.
func (board *Window) Apply(event timekeeper.Event) {
	switch event.Type {
	case timekeeper.EventClock, timekeeper.EventAlarm, timekeeper.EventFinished:
		board.setClock(event.Clock)
	case timekeeper.EventCounter:
		if row, ok := board.rows[event.Counter.ID]; ok {
			row.setCounter(event.Counter)
		}
	case timekeeper.EventCounters:
		board.setCounters(event.Counters)
	case timekeeper.EventVisibility:
		board.visibility[event.Section] = event.Visible
		for _, row := range board.rows {
			if row.counter.Section == event.Section {
				row.setVisible(event.Visible)
			}
		}
	}
}

func (board *Window) setClock(clock timekeeper.ClockView) {
	board.timerLabel.Text = clock.Display
	switch clock.Style {
	case countdown.StyleDanger:
		board.timerLabel.Color = dangerColor
	case countdown.StyleWarning:
		board.timerLabel.Color = warningColor
	default:
		board.timerLabel.Color = normalColor
	}
	board.timerLabel.Refresh()

	if clock.Phase == countdown.PhaseRunning {
		board.toggleButton.SetText("Pause")
	} else {
		board.toggleButton.SetText("Start")
	}
	if clock.Alarming {
		board.silenceBtn.Enable()
	} else {
		board.silenceBtn.Disable()
	}
}

// setCounters rebuilds the row list, reusing rows of counters that survive.
func (board *Window) setCounters(list []model.Counter) {
	next := make(map[string]*counterRow, len(list))
	objects := make([]fyne.CanvasObject, 0, len(list))
	for _, counter := range list {
		row, ok := board.rows[counter.ID]
		if !ok {
			row = board.newRow(counter)
		}
		row.setCounter(counter)
		row.setVisible(board.sectionVisible(counter.Section))
		next[counter.ID] = row
		objects = append(objects, row.root)
	}
	board.rows = next
	board.rowsBox.Objects = objects
	board.rowsBox.Refresh()
}

func (board *Window) sectionVisible(section string) bool {
	visible, ok := board.visibility[section]
	return !ok || visible
}

func (board *Window) newRow(counter model.Counter) *counterRow {
	ref := counter.ID
	section := counter.Section
	row := &counterRow{counter: counter}

	row.check = widget.NewCheck(counter.Name, func(checked bool) {
		if !row.syncing {
			board.commands.SetVisibility(section, checked)
		}
	})
	row.valueLabel = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})

	row.minusBtn = widget.NewButton("-", func() { board.commands.Adjust(ref, -1) })
	row.plusBtn = widget.NewButton("+", func() { board.commands.Adjust(ref, 1) })
	row.resetBtn = widget.NewButton("Reset", func() { board.commands.ResetCounter(ref) })

	controls := []fyne.CanvasObject{row.minusBtn, row.valueLabel, row.plusBtn, row.resetBtn}
	if counter.ID == model.CounterCommand {
		row.commandText = widget.NewEntry()
		row.commandText.SetPlaceHolder("set")
		row.commandText.OnSubmitted = func(input string) {
			board.commands.SetCommandPoints(input)
			row.commandText.SetText("")
		}
		controls = append(controls, row.commandText)
	}
	if counter.IsCustom() {
		id := counter.CustomID
		row.removeBtn = widget.NewButton("Remove", func() { board.commands.RemoveCustom(id) })
		row.removeBtn.Importance = widget.DangerImportance
		controls = append(controls, row.removeBtn)
	}

	row.body = container.NewHBox(controls...)
	row.root = container.NewVBox(
		container.NewHBox(row.check, layout.NewSpacer()),
		row.body,
	)
	return row
}

func (board *Window) handleAdd() {
	_, err := board.commands.AddCustom(board.nameEntry.Text, board.defaultEntry.Text)
	if err != nil {
		if errors.Is(err, counters.ErrEmptyName) {
			board.addError.SetText("Enter a name for the tracker")
		} else {
			board.addError.SetText(err.Error())
		}
		board.addError.Show()
		return
	}
	board.addError.Hide()
	board.nameEntry.SetText("")
	board.defaultEntry.SetText("")
}

func (row *counterRow) setCounter(counter model.Counter) {
	row.counter = counter
	row.check.Text = counter.Name
	row.check.Refresh()
	row.valueLabel.SetText(strconv.Itoa(counter.Value))
	if counter.Style() == model.StyleLow {
		row.valueLabel.Importance = widget.DangerImportance
	} else {
		row.valueLabel.Importance = widget.MediumImportance
	}
	row.valueLabel.Refresh()
}

func (row *counterRow) setVisible(visible bool) {
	row.syncing = true
	row.check.SetChecked(visible)
	row.syncing = false
	if visible {
		row.body.Show()
	} else {
		row.body.Hide()
	}
}
