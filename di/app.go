package di

import (
	"openrun/internal/engine"
	"openrun/transport/http"
)

// App bundles the long-running pieces of the service: the HTTP API and the
// reservation engine behind it.
type App struct {
	HTTP   *http.HTTP
	Engine engine.Engine
}
