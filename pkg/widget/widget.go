// Package widget assembles the calendar engine for an embedding presentation
// layer: configuration, the event store, the navigator, and the notification
// bus, wired together with explicit construction rather than ambient state.
package widget

import (
	"context"
	"time"

	"github.com/kalendo/kalendo/internal/config"
	"github.com/kalendo/kalendo/internal/event_bus"
	"github.com/kalendo/kalendo/internal/utils"
	"github.com/kalendo/kalendo/pkg/calendar"
	"github.com/kalendo/kalendo/pkg/layout"
	"github.com/kalendo/kalendo/pkg/view"
	log "github.com/sirupsen/logrus"
)

// Widget is the read/command surface handed to the presentation layer. The
// store and navigator are the only writers of their state; presentation only
// reads and invokes commands.
type Widget struct {
	Store     *calendar.EventStore
	Navigator *view.Navigator
	Bus       *event_bus.Bus
	Config    config.Widget
}

// New wires a widget from configuration. A nil source falls back to the
// in-memory stub, so a widget without persistence callbacks still works,
// keeping optimistic events as-is.
func New(cfg config.Widget, source calendar.EventSource) (*Widget, error) {
	if cfg.LogLevel != "" {
		level, err := log.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		log.SetLevel(level)
	}

	if source == nil {
		source = calendar.NewStubSource()
	}

	var filters []calendar.Color
	for _, f := range cfg.Filters {
		c := calendar.Color(f)
		if !c.Valid() {
			log.Warnf("ignoring unknown filter color %q in configuration", f)
			continue
		}
		filters = append(filters, c)
	}

	bus := event_bus.New()
	store := calendar.NewEventStore(source, bus, filters)
	navigator := view.NewNavigator(
		store.SetDateRange,
		utils.SystemClock{},
		view.Mode(cfg.DefaultView),
		time.Weekday(cfg.WeekStartDay),
	)

	return &Widget{
		Store:     store,
		Navigator: navigator,
		Bus:       bus,
		Config:    cfg,
	}, nil
}

// Load reads configuration from the given path and wires a widget from it.
func Load(path string, source calendar.EventSource) (*Widget, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return New(cfg, source)
}

// Init performs the initial range fetch for the configured default view.
func (w *Widget) Init(ctx context.Context) error {
	return w.Navigator.Refresh(ctx)
}

// DayLayout runs the overlap layout over the filtered events of one day.
func (w *Widget) DayLayout(day time.Time) (layout.Result, error) {
	return layout.Layout(w.Store.EventsOnDate(day))
}

// Geometry places one positioned event using the configured grid metrics.
func (w *Widget) Geometry(p layout.Positioned) layout.Geometry {
	return p.Geometry(w.Config.Grid.HourHeight, w.Config.Grid.MinEventHeight)
}
