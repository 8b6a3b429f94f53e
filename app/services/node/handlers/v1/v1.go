// Package v1 contains the full set of handler functions and routes supported
// by the v1 web api.
package v1

import (
	"net/http"

	"github.com/minichain/minichain/app/services/node/handlers/v1/nodegrp"
	"github.com/minichain/minichain/foundation/blockchain/state"
	"github.com/minichain/minichain/foundation/events"
	"github.com/minichain/minichain/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	Evts  *events.Events
}

// Routes binds all the version 1 routes.
func Routes(app *web.App, cfg Config) {
	ndg := nodegrp.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/chain", ndg.Chain)
	app.Handle(http.MethodGet, version, "/tx/uncommitted/list", ndg.Pending)
	app.Handle(http.MethodPost, version, "/tx/submit", ndg.SubmitTransaction)
	app.Handle(http.MethodGet, version, "/mine", ndg.Mine)
	app.Handle(http.MethodGet, version, "/node/peers", ndg.KnownPeers)
	app.Handle(http.MethodPost, version, "/node/peers", ndg.RegisterPeers)
	app.Handle(http.MethodGet, version, "/node/resolve", ndg.Resolve)
	app.Handle(http.MethodGet, version, "/events", ndg.Events)
}
