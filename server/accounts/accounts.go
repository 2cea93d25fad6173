// Package accounts has services for creating and authenticating operator
// accounts on the eval server, decoupled from the HTTP layer that calls it.
package accounts

import (
	"github.com/dekarrin/rpal/server/dao"
)

// Service performs account actions against persistence. The zero value is
// not ready to use; assign a valid DAO store to DB first.
type Service struct {
	DB dao.Store
}
