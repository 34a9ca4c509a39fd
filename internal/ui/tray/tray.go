package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
)

// MenuHost is the part of desktop.App the tray needs.
type MenuHost interface {
	SetSystemTrayMenu(menu *fyne.Menu)
}

// Section is a counter section that can be shown or hidden from the tray.
type Section struct {
	Key   string
	Label string
}

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnTogglePause   func()
	OnReset         func()
	OnSilence       func()
	OnResetCounters func()
	OnToggleSection func(key string)
	OnShowBoard     func()
	OnPreferences   func()
	OnQuit          func()
}

// Manager handles system tray state.
type Manager struct {
	host         MenuHost
	statusItem   *fyne.MenuItem
	pauseItem    *fyne.MenuItem
	resetItem    *fyne.MenuItem
	silenceItem  *fyne.MenuItem
	countersItem *fyne.MenuItem
	sectionsItem *fyne.MenuItem
	boardItem    *fyne.MenuItem
	prefsItem    *fyne.MenuItem
	quitItem     *fyne.MenuItem
	sectionItems map[string]*fyne.MenuItem
	callbacks    Callbacks
	running      bool
	statusLabel  string
}

// New creates a tray manager with the provided callbacks.
func New(host MenuHost, sections []Section, callbacks Callbacks) *Manager {
	manager := &Manager{
		host:         host,
		callbacks:    callbacks,
		sectionItems: make(map[string]*fyne.MenuItem, len(sections)),
		statusLabel:  "--:--",
	}

	manager.statusItem = fyne.NewMenuItem("Clock: --:--", nil)
	manager.statusItem.Disabled = true

	manager.pauseItem = fyne.NewMenuItem("Start", func() {
		if manager.callbacks.OnTogglePause != nil {
			manager.callbacks.OnTogglePause()
		}
	})
	manager.resetItem = fyne.NewMenuItem("Reset clock", func() {
		if manager.callbacks.OnReset != nil {
			manager.callbacks.OnReset()
		}
	})
	manager.silenceItem = fyne.NewMenuItem("Silence alarm", func() {
		if manager.callbacks.OnSilence != nil {
			manager.callbacks.OnSilence()
		}
	})
	manager.silenceItem.Disabled = true

	manager.countersItem = fyne.NewMenuItem("Reset all counters", func() {
		if manager.callbacks.OnResetCounters != nil {
			manager.callbacks.OnResetCounters()
		}
	})

	items := make([]*fyne.MenuItem, 0, len(sections))
	for _, section := range sections {
		key := section.Key
		item := fyne.NewMenuItem(section.Label, func() {
			if manager.callbacks.OnToggleSection != nil {
				manager.callbacks.OnToggleSection(key)
			}
		})
		item.Checked = true
		manager.sectionItems[key] = item
		items = append(items, item)
	}
	manager.sectionsItem = fyne.NewMenuItem("Show sections", nil)
	manager.sectionsItem.ChildMenu = fyne.NewMenu("", items...)

	manager.boardItem = fyne.NewMenuItem("Show board", func() {
		if manager.callbacks.OnShowBoard != nil {
			manager.callbacks.OnShowBoard()
		}
	})
	manager.prefsItem = fyne.NewMenuItem("Preferences", func() {
		if manager.callbacks.OnPreferences != nil {
			manager.callbacks.OnPreferences()
		}
	})
	manager.quitItem = fyne.NewMenuItem("Quit", func() {
		if manager.callbacks.OnQuit != nil {
			manager.callbacks.OnQuit()
		}
	})
	manager.quitItem.IsQuit = true

	manager.refreshMenu()
	return manager
}

// SetClock updates the status line and the start/pause item.
func (manager *Manager) SetClock(display string, running bool) {
	if display == manager.statusLabel && running == manager.running {
		return
	}
	manager.statusLabel = display
	manager.running = running
	if running {
		manager.pauseItem.Label = "Pause"
	} else {
		manager.pauseItem.Label = "Start"
	}
	manager.refreshStatus()
}

// SetAlarming enables the silence item while the alarm rings.
func (manager *Manager) SetAlarming(alarming bool) {
	if manager.silenceItem.Disabled == !alarming {
		return
	}
	manager.silenceItem.Disabled = !alarming
	manager.refreshMenu()
}

// SetSectionVisible updates the check mark of a section.
func (manager *Manager) SetSectionVisible(key string, visible bool) {
	item, ok := manager.sectionItems[key]
	if !ok || item.Checked == visible {
		return
	}
	item.Checked = visible
	manager.refreshMenu()
}

func (manager *Manager) refreshStatus() {
	status := manager.statusLabel
	if !manager.running {
		status = fmt.Sprintf("%s (stopped)", status)
	}
	manager.statusItem.Label = fmt.Sprintf("Clock: %s", status)
	manager.refreshMenu()
}

func (manager *Manager) refreshMenu() {
	if manager.host == nil {
		return
	}
	manager.host.SetSystemTrayMenu(fyne.NewMenu("WarTally",
		manager.statusItem,
		manager.pauseItem,
		manager.resetItem,
		manager.silenceItem,
		fyne.NewMenuItemSeparator(),
		manager.countersItem,
		manager.sectionsItem,
		fyne.NewMenuItemSeparator(),
		manager.boardItem,
		manager.prefsItem,
		manager.quitItem,
	))
}
