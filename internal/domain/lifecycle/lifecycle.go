// Package lifecycle holds values shared by components that hook into the fx lifecycle.
package lifecycle

import "time"

// DefaultTimeout bounds start and stop hooks such as database pings and server shutdown.
const DefaultTimeout = 10 * time.Second
