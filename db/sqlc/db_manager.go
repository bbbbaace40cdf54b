package sqlc

import "time"

// QuerierCtxTimeout bounds every analytics query.
const (
	QuerierCtxTimeout = time.Second * 10
)

// DbManager groups the query managers the server needs. Game analytics is
// the only table today.
type DbManager struct {
	Analytics *AnalyticsManager
}

// NewDbManager wraps queries, usually sqlc.New(db), in the per-table
// managers.
func NewDbManager(queries Querier) DbManager {
	return DbManager{
		Analytics: NewAnalyticsManager(queries),
	}
}
