// Package ui implements the interactive terminal client: an order ticket,
// order and execution blotters, a security-definition form, and path-based
// navigation between them.
package ui

import (
	"context"
	"log/slog"

	"traderterm/internal/blotter"
	"traderterm/internal/config"
	"traderterm/internal/nav"
	"traderterm/internal/oms"
	"traderterm/internal/ticket"
)

// OrderService is the slice of the order-service client the UI depends on.
// It is satisfied by *oms.Client and by fakes in tests.
type OrderService interface {
	ticket.OrderService
	ListOrders(ctx context.Context) ([]oms.Order, error)
	GetOrder(ctx context.Context, id int) (*oms.Order, error)
	CancelOrder(ctx context.Context, id int) error
	ListExecutions(ctx context.Context) ([]oms.Execution, error)
	GetExecution(ctx context.Context, id int) (*oms.Execution, error)
}

// App is the application context. It owns the collections, controllers, and
// router, and is passed by reference to everything that needs them.
type App struct {
	Config *config.Config
	Client OrderService
	Log    *slog.Logger

	Orders     *blotter.Collection[oms.Order]
	Executions *blotter.Collection[oms.Execution]

	OrderTicket *ticket.OrderTicket
	SecDefForm  *ticket.SecDefForm
	Router      *nav.Router

	orderSync *blotter.Synchronizer[oms.Order]
	execSync  *blotter.Synchronizer[oms.Execution]
}

// NewApp wires the application context. recorder may be nil to disable the
// submission journal.
func NewApp(cfg *config.Config, client OrderService, recorder ticket.Recorder, log *slog.Logger) *App {
	session := ""
	if len(cfg.Sessions) > 0 {
		session = cfg.Sessions[0]
	}

	app := &App{
		Config:      cfg,
		Client:      client,
		Log:         log,
		Orders:      blotter.NewCollection[oms.Order](),
		Executions:  blotter.NewCollection[oms.Execution](),
		OrderTicket: ticket.NewOrderTicket(client, recorder, log, session),
		SecDefForm:  ticket.NewSecDefForm(client, recorder, log, session),
		Router:      nav.NewRouter(),
	}

	interval := cfg.Poll.Interval()
	app.orderSync = blotter.NewSynchronizer("orders", app.Orders, client.ListOrders, interval, log)
	app.execSync = blotter.NewSynchronizer("executions", app.Executions, client.ListExecutions, interval, log)

	return app
}

// StartSync launches the snapshot pollers. They run until ctx is cancelled;
// polling outlives view transitions.
func (a *App) StartSync(ctx context.Context) {
	go a.orderSync.Run(ctx)
	go a.execSync.Run(ctx)
}
