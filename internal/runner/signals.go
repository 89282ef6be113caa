package runner

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// SignalWatcher watches the project signal directory for kill and pause
// files, so a session can be interrupted from outside the process.
type SignalWatcher struct {
	signalsDir string

	mu          sync.RWMutex
	stopSignal  bool
	pauseSignal bool

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewSignalWatcher creates a watcher over <projectRoot>/.snowhive/signals.
// If the fsnotify watcher cannot be started the stat fallback in
// ShouldStop/ShouldPause still works.
func NewSignalWatcher(projectRoot string) (*SignalWatcher, error) {
	signalsDir := filepath.Join(projectRoot, ".snowhive", "signals")
	if err := os.MkdirAll(signalsDir, 0755); err != nil {
		return nil, err
	}

	sw := &SignalWatcher{
		signalsDir: signalsDir,
		done:       make(chan struct{}),
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return sw, nil
	}
	if err := watcher.Add(signalsDir); err != nil {
		watcher.Close()
		return sw, nil
	}
	sw.watcher = watcher

	go sw.watch()
	return sw, nil
}

func (sw *SignalWatcher) watch() {
	for {
		select {
		case <-sw.done:
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			sw.mu.Lock()
			switch filepath.Base(event.Name) {
			case "kill":
				sw.stopSignal = true
			case "pause":
				sw.pauseSignal = true
			}
			sw.mu.Unlock()
		case <-sw.watcher.Errors:
			// Keep watching.
		}
	}
}

// checkFile stats a signal file directly in case the watcher missed it.
func (sw *SignalWatcher) checkFile(name string, flag *bool) {
	if _, err := os.Stat(filepath.Join(sw.signalsDir, name)); err == nil {
		sw.mu.Lock()
		*flag = true
		sw.mu.Unlock()
	}
}

// ShouldStop returns true if a kill signal has been received.
func (sw *SignalWatcher) ShouldStop() bool {
	sw.checkFile("kill", &sw.stopSignal)
	sw.mu.RLock()
	defer sw.mu.RUnlock()
	return sw.stopSignal
}

// ShouldPause returns true if a pause signal has been received.
func (sw *SignalWatcher) ShouldPause() bool {
	sw.checkFile("pause", &sw.pauseSignal)
	sw.mu.RLock()
	defer sw.mu.RUnlock()
	return sw.pauseSignal
}

// SendKill creates the kill signal file.
func (sw *SignalWatcher) SendKill() error {
	return sw.writeSignal("kill")
}

// SendPause creates the pause signal file.
func (sw *SignalWatcher) SendPause() error {
	return sw.writeSignal("pause")
}

func (sw *SignalWatcher) writeSignal(name string) error {
	path := filepath.Join(sw.signalsDir, name)
	return os.WriteFile(path, []byte(time.Now().Format(time.RFC3339)), 0644)
}

// ClearSignals removes the signal files and resets state.
func (sw *SignalWatcher) ClearSignals() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	sw.stopSignal = false
	sw.pauseSignal = false
	os.Remove(filepath.Join(sw.signalsDir, "kill"))
	os.Remove(filepath.Join(sw.signalsDir, "pause"))
}

// Close shuts down the watcher.
func (sw *SignalWatcher) Close() {
	close(sw.done)
	if sw.watcher != nil {
		sw.watcher.Close()
	}
}
