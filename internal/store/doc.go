// Package store defines the persistence interfaces consumed by the service
// layer. Implementations live under internal/platform.
package store
