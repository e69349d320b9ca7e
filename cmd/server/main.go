// Command server runs the Golf Match Tracker API.
//
// Configuration comes from the environment (and a .env file in development); see
// internal/config. Pending migrations in migrations/ are applied before the listener
// starts.
package main

import (
	"go.uber.org/fx"

	"github.com/trentd187/golf-match-tracker/internal/app"
)

func main() {
	fx.New(app.Module).Run()
}
