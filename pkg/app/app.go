package app

import (
	"context"
	"net/url"
	"sync"

	"segcount/pkg/app/config"
	"segcount/pkg/mqtt"
	"segcount/pkg/port"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
)

// App is the main application struct.
// App is where the application is wired up.
type App struct {
	// web is the fiber web framework instance
	web *fiber.App

	// config is the application configuration
	config *config.Config

	// urlParsed contains the parsed Config.Url parameter
	// and makes it easier to get params out of e.g.
	// url: https://0.0.0.0:7844/?minTls=1.2&bodyLimit=50MB
	urlParsed *url.URL

	// mqtt is the handler to the mqtt broker
	mqtt *mqtt.Handler

	// lines is the handler to the gpio lines of the display buses
	lines port.Writer

	// watchdog is the watchdog disabled by the controller
	watchdog Watchdog

	// controller runs the counting loop
	controller *Controller

	// display is the last state shown on the display
	display struct {
		sync.RWMutex
		data Snapshot
	}

	// cancel stops the controller
	cancel context.CancelFunc
	// done signals that the controller is stopped
	done chan struct{}
}

// New checks the Web server URL and initialize the main app structure
func New(config *config.Config) (*App, error) {
	u, err := url.Parse(config.Webserver.URL)
	if err != nil {
		debug.ErrorLog.Printf("Error parsing url %q: %s", config.Webserver.URL, err.Error())
		return &App{}, err
	}

	return &App{
		config:    config,
		urlParsed: u,

		web:  fiber.New(fiber.Config{DisableStartupMessage: true}),
		mqtt: mqtt.New(),

		done: make(chan struct{}),
	}, nil
}

// Run starts the application.
func (app *App) Run() error {
	if err := app.init(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel

	go app.mqtt.Service()
	if app.urlParsed.Host != "" {
		go app.runWebServer()
	}
	go app.runController(ctx)

	return nil
}

// init initializes the application.
func (app *App) init() (err error) {
	if app.lines, app.watchdog, err = openHardware(app.config); err != nil {
		return err
	}

	app.controller = newBoard(app.watchdog, app.lines, app.config.Display.Interval)
	app.controller.publish = app.update

	if err = app.mqtt.Connect(app.config.MQTT.Connection); err != nil {
		debug.ErrorLog.Printf("can't open mqtt broker %v", err)
		return err
	}

	// initDefaultRoutes should be always called last because it may access things like app.controller
	// which must be initialized before
	app.initDefaultRoutes()

	return nil
}

// runController runs the counting loop until the app is closed.
func (app *App) runController(ctx context.Context) {
	defer close(app.done)

	if err := app.controller.Run(ctx); err != nil {
		debug.ErrorLog.Printf("can't initialize display: %v", err)
	}
}

// Close stops the controller and releases the hardware.
// The controller finishes the running interval before it stops.
func (app *App) Close() error {
	if app.cancel != nil {
		app.cancel()
		<-app.done
	}

	if app.web != nil {
		_ = app.web.Shutdown()
	}

	if app.mqtt != nil {
		_ = app.mqtt.Disconnect()
	}

	if app.lines != nil {
		_ = app.lines.Close()
	}
	return nil
}
