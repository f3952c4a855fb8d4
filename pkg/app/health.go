package app

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
)

// HandleHealth returns data about the health of myself and the display.
// output example:
//  {"NumGoroutines":9,"NumCPU":4,"HeapAllocatedMB":1,"SysMemoryMB":11,"Version":"1.0.00+20261019",
//   "ProgLang":"go1.21.5","HostName":"raspberrypi","Backend":"gpiod","Watchdog":false,"LastUpdate":"..."}
func (app *App) HandleHealth() fiber.Handler {
	bToMb := func(b uint64) uint64 {
		return b / 1024 / 1024
	}

	host, _ := os.Hostname()

	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request health")

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		var lastUpdate string
		if t := app.Display().Time; !t.IsZero() {
			lastUpdate = t.Format(time.RFC3339)
		}

		healthData := struct {
			NumGoroutines   int
			NumCPU          int
			HeapAllocatedMB uint64
			SysMemoryMB     uint64
			Version         string
			ProgLang        string
			HostName        string
			Backend         string
			Watchdog        bool
			LastUpdate      string
			Time            string
		}{
			NumGoroutines:   runtime.NumGoroutine(),
			NumCPU:          runtime.NumCPU(),
			HeapAllocatedMB: bToMb(m.Alloc),
			SysMemoryMB:     bToMb(m.Sys),
			ProgLang:        runtime.Version(),
			Version:         VERSION,
			HostName:        host,
			Backend:         app.config.Gpio.Backend,
			Watchdog:        app.watchdog != nil && app.watchdog.Enabled(),
			LastUpdate:      lastUpdate,
			Time:            time.Now().Format(time.RFC3339),
		}
		ctx.Status(http.StatusOK)
		return ctx.JSON(healthData)
	}
}
