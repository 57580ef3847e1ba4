package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"forumapi/internal/models"
	"forumapi/internal/repository"
)

type logRow struct {
	ID        int64     `db:"id"`
	Logs      string    `db:"logs"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// AuditLogs stores each entry as one JSON document in api_logs.logs.
type AuditLogs struct {
	table *Table[logRow]
}

var _ repository.AuditLogs = (*AuditLogs)(nil)

func NewAuditLogs(db *sqlx.DB) *AuditLogs {
	return &AuditLogs{table: newTable[logRow](db, "api_logs",
		[]string{"id", "logs", "created_at", "updated_at"},
		[]string{"logs"},
	)}
}

func (a *AuditLogs) Append(ctx context.Context, entry models.AuditEntry) error {
	doc, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode audit entry: %w", err)
	}
	_, err = a.table.insert(ctx, repository.Attributes{"logs": string(doc)})
	return err
}

func (a *AuditLogs) FetchAll(ctx context.Context) ([]models.AuditEntry, error) {
	rows, err := a.table.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.AuditEntry, 0, len(rows))
	for _, r := range rows {
		var e models.AuditEntry
		if err := json.Unmarshal([]byte(r.Logs), &e); err != nil {
			return nil, fmt.Errorf("decode audit entry %d: %w", r.ID, err)
		}
		e.ID = r.ID
		out = append(out, e)
	}
	return out, nil
}
