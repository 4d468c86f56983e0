package domain

import "encoding/json"

// Collection is one persisted set of records together with the version it
// was read at. A missing collection loads as empty at version 0.
type Collection struct {
	Records []json.RawMessage
	Version int64
}
