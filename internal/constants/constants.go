package constants

import "time"

const (
	RefreshTimeout     = 2 * time.Minute
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	DBMaxOpenConns    = 1
	DBMaxIdleConns    = 1
	DBConnMaxLifetime = 0 // pragmas are per connection
	DBMaxIdleTime     = 0
)

const (
	LoaderConcurrency = 8
)

const (
	// StartTimeout covers the initial refresh run from fx OnStart.
	StartTimeout    = RefreshTimeout + 30*time.Second
	ShutdownTimeout = 5 * time.Second
)

const (
	RefreshRateLimit = 10 * time.Second
	RefreshBurst     = 1
)

const (
	ChartWidth  = 800
	ChartHeight = 400
)
