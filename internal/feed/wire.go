// Package feed decodes the raw job feed into core domain values. All the
// silent-degradation rules live at this boundary: malformed amounts
// coerce to zero, unparseable dates become the zero time, unknown
// transaction types classify as expenses and missing client names are
// resolved later via the Unknown Client sentinel. The core never sees a
// decoding error.
package feed

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"clientledger/internal/core"
)

type jobDoc struct {
	ID           string  `json:"_id"`
	Name         string  `json:"name"`
	Client       string  `json:"client"`
	Transactions []txDoc `json:"transactions"`
}

type txDoc struct {
	ID     string          `json:"_id"`
	Date   string          `json:"date"`
	Type   string          `json:"type"`
	Amount json.RawMessage `json:"amount"`
	Note   string          `json:"note"`
}

// Layouts the feed has been observed to emit. Tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// DecodeJobs reads a JSON array of job documents. Document-level JSON
// errors are returned; field-level garbage inside a valid document is
// normalized away instead.
func DecodeJobs(r io.Reader) ([]core.Job, error) {
	var docs []jobDoc
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decode job feed: %w", err)
	}
	jobs := make([]core.Job, 0, len(docs))
	for _, d := range docs {
		jobs = append(jobs, d.toCore())
	}
	return jobs, nil
}

func (d jobDoc) toCore() core.Job {
	job := core.Job{
		ID:     d.ID,
		Name:   d.Name,
		Client: strings.TrimSpace(d.Client),
	}
	if len(d.Transactions) > 0 {
		job.Transactions = make([]core.Transaction, 0, len(d.Transactions))
	}
	for _, tx := range d.Transactions {
		job.Transactions = append(job.Transactions, tx.toCore())
	}
	return job
}

func (d txDoc) toCore() core.Transaction {
	return core.Transaction{
		ID:     d.ID,
		Date:   ParseDate(d.Date),
		Type:   core.ParseTxType(d.Type),
		Amount: core.Money{Cents: coerceAmount(d.Amount)},
		Note:   d.Note,
	}
}

// ParseDate interprets a feed date string, returning the zero time when
// nothing matches. Zero dates are excluded from year buckets downstream,
// never surfaced as errors.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

// coerceAmount handles the feed's loosely-typed amount field: a JSON
// number, a quoted numeric string, or junk. Junk contributes zero.
func coerceAmount(raw json.RawMessage) int64 {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		var unquoted string
		if err := json.Unmarshal(raw, &unquoted); err != nil {
			return 0
		}
		s = unquoted
	}
	return core.CoerceCents(s)
}

// DecodeUserJobs reads a JSON object mapping user IDs to job arrays,
// the shape used by local seed files.
func DecodeUserJobs(r io.Reader) (map[string][]core.Job, error) {
	var docs map[string][]jobDoc
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decode seed feed: %w", err)
	}
	out := make(map[string][]core.Job, len(docs))
	for user, list := range docs {
		jobs := make([]core.Job, 0, len(list))
		for _, d := range list {
			jobs = append(jobs, d.toCore())
		}
		out[user] = jobs
	}
	return out, nil
}
