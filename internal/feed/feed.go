// Package feed carries change-invalidation signals between the store and the
// live tenant sessions. A signal says only "something in this table changed
// for this agency"; consumers re-fetch the whole collection instead of
// applying deltas, which cannot drift from a partial or misordered event.
package feed

import "fmt"

// Tables a session can subscribe to.
const (
	TableAgencies      = "agencies"
	TableProjects      = "projects"
	TableInvoices      = "invoices"
	TableExpenses      = "expenses"
	TableNotifications = "notifications"
	TableInvitations   = "invitations"
)

// Change identifies an invalidated collection. No row payload on purpose.
type Change struct {
	AgencyID uint
	Table    string
}

// Handler runs on every change signal. It must not block.
type Handler func()

// Feed is the pub/sub fabric. Subscribe returns an unsubscribe func; after it
// returns, the handler is never invoked again.
type Feed interface {
	Publish(change Change)
	Subscribe(agencyID uint, table string, fn Handler) (unsubscribe func(), err error)
}

func subject(agencyID uint, table string) string {
	return fmt.Sprintf("changes.%d.%s", agencyID, table)
}
