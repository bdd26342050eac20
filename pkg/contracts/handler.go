package contracts

import (
	"context"

	"github.com/julienschmidt/httprouter"
)

type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// Worker is a long running background loop owned by the application. Run
// blocks until ctx is cancelled or the worker fails.
type Worker interface {
	Name() string
	Run(ctx context.Context) error
}
