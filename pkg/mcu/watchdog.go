package mcu

import (
	"os"
	"sync"

	"github.com/womat/debug"
)

// WDTCN disable sequence: 0xDE followed by 0xAD.
const (
	wdtDisableKey1 = 0xde
	wdtDisableKey2 = 0xad
)

// Watchdog models the watchdog timer, which is enabled at power on.
type Watchdog struct {
	sync.Mutex
	// wdtcn is the last value written to the watchdog control register.
	wdtcn   byte
	enabled bool
}

// NewWatchdog returns the watchdog in its power-on state (enabled).
func NewWatchdog() *Watchdog {
	return &Watchdog{enabled: true}
}

// Enabled reports whether the watchdog is running.
func (w *Watchdog) Enabled() bool {
	w.Lock()
	defer w.Unlock()
	return w.enabled
}

// Disable writes the disable sequence to WDTCN.
// The watchdog can't be re-armed afterwards.
func (w *Watchdog) Disable() error {
	w.Lock()
	defer w.Unlock()

	w.write(wdtDisableKey1)
	w.write(wdtDisableKey2)
	return nil
}

// write stores v in WDTCN. The watchdog stops if 0xAD directly follows 0xDE.
func (w *Watchdog) write(v byte) {
	if w.wdtcn == wdtDisableKey1 && v == wdtDisableKey2 {
		w.enabled = false
	}
	w.wdtcn = v
}

// DeviceWatchdog is a Linux watchdog device, e.g. /dev/watchdog.
// Opening the device arms the watchdog.
type DeviceWatchdog struct {
	sync.Mutex
	file *os.File
}

// OpenDeviceWatchdog opens (and thereby arms) the watchdog device.
func OpenDeviceWatchdog(name string) (*DeviceWatchdog, error) {
	f, err := os.OpenFile(name, os.O_WRONLY, 0)
	if err != nil {
		return nil, err
	}

	debug.InfoLog.Printf("watchdog %v armed", name)
	return &DeviceWatchdog{file: f}, nil
}

// Enabled reports whether the device is still open.
func (w *DeviceWatchdog) Enabled() bool {
	w.Lock()
	defer w.Unlock()
	return w.file != nil
}

// Disable writes the magic close character and closes the device.
// Drivers built with nowayout ignore the magic close and reset the system anyway.
func (w *DeviceWatchdog) Disable() error {
	w.Lock()
	defer w.Unlock()

	if w.file == nil {
		return nil
	}

	if _, err := w.file.Write([]byte("V")); err != nil {
		return err
	}

	err := w.file.Close()
	w.file = nil
	return err
}
