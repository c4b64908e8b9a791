package handler

const (
	// RootPath is the root path of a route group.
	RootPath = "/"

	// APIPrefix is the prefix of every API route.
	APIPrefix = "/api"

	// IDPath is the path of a single entity.
	IDPath = "/:id"

	// ErrNilFatalLogMsg is logged when a handler is initialised without its dependencies.
	ErrNilFatalLogMsg = "app, cfg or auth service is nil"
)
