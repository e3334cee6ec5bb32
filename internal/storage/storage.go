package storage

import (
	"context"
	"time"
)

// FAQRecord is one generated question/answer pair, kept as a ledger entry so
// earlier runs can be reviewed without re-spending API calls.
type FAQRecord struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	Client    string    `json:"client"`
	Keyword   string    `json:"keyword"`
	Position  int       `json:"position"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

// Filter allows querying for specific FAQRecords.
type Filter struct {
	Client string
	RunID  string
	Since  *time.Time
	Limit  int
	Offset int
}

// Match reports whether r passes the non-paging parts of the filter.
func (f Filter) Match(r *FAQRecord) bool {
	if f.Client != "" && r.Client != f.Client {
		return false
	}
	if f.RunID != "" && r.RunID != f.RunID {
		return false
	}
	if f.Since != nil && r.CreatedAt.Before(*f.Since) {
		return false
	}
	return true
}

// Page orders records newest first (input is in append order) and applies
// Offset and Limit.
func (f Filter) Page(records []*FAQRecord) []*FAQRecord {
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	if f.Offset > 0 {
		if f.Offset >= len(records) {
			return []*FAQRecord{}
		}
		records = records[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(records) {
		records = records[:f.Limit]
	}
	return records
}

// Backend defines the interface for storing and querying FAQ records.
type Backend interface {
	Save(ctx context.Context, record *FAQRecord) error
	Query(ctx context.Context, filter Filter) ([]*FAQRecord, error)
	Close() error
}
