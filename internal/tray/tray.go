// Package tray provides a system tray menu for mudra.
package tray

import (
	"strings"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/overlay"
)

// Tray is the system tray menu.
type Tray struct {
	onToggle func(enabled bool)
	onOpen   func()
	onQuit   func()
	enabled  bool
	current  string
	mu       sync.RWMutex

	menuToggle  *systray.MenuItem
	menuCurrent *systray.MenuItem
}

// New creates a Tray with recognition enabled.
func New() *Tray {
	return &Tray{
		enabled: true,
		current: gesture.None.Label(),
	}
}

// OnToggle sets the callback run when recognition is switched on or off.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpen sets the callback run by "Open in Browser".
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback run before the tray exits.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the tray. It blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit exits the tray's event loop.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra hand gesture recognition")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle gesture recognition")
	systray.AddSeparator()
	t.menuCurrent = systray.AddMenuItem(t.current, "Current gesture")
	t.menuCurrent.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open in Browser", "Open the live view")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetGestures shows the stable gesture of each tracked hand. The menu is only
// touched when the text changes.
func (t *Tray) SetGestures(states []gesture.State) {
	text := Describe(states)

	t.mu.Lock()
	defer t.mu.Unlock()
	if text == t.current {
		return
	}
	t.current = text
	if t.menuCurrent != nil {
		t.menuCurrent.SetTitle(text)
	}
}

// Current returns the text of the current gesture line.
func (t *Tray) Current() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Describe joins the captions of the hands holding a stable gesture, e.g.
// "Right: Peace - Rainbow Wave (85%)". Without one it returns the None label.
func Describe(states []gesture.State) string {
	var parts []string
	for _, s := range states {
		if s.Gesture == gesture.None {
			continue
		}
		caption := overlay.Caption(s)
		if s.Handedness != "" {
			caption = s.Handedness + ": " + caption
		}
		parts = append(parts, caption)
	}
	if len(parts) == 0 {
		return gesture.None.Label()
	}
	return strings.Join(parts, ", ")
}
