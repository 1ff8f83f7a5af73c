// Package db selects the storage driver named by the profile.
package db

import (
	"github.com/pkg/errors"

	"github.com/citycompass/citycompass/internal/profile"
	"github.com/citycompass/citycompass/store"
	"github.com/citycompass/citycompass/store/db/memory"
	"github.com/citycompass/citycompass/store/db/sqlite"
)

// NewDBDriver creates the driver for profile.Driver.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	switch profile.Driver {
	case "memory":
		return memory.NewDB(), nil
	case "sqlite":
		return sqlite.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver: %s", profile.Driver)
	}
}
