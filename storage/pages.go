// Package storage has reference implementations of page and image services
// backed by SQLite database and local directory.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"pagemaker/common"
	"pagemaker/page"
)

var ErrNotFound = errors.New("page not found")

const schema = `
CREATE TABLE IF NOT EXISTS pages (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL DEFAULT '',
	content     TEXT NOT NULL DEFAULT '[]',
	target_area TEXT NOT NULL DEFAULT 'pc',
	owner_id    TEXT NOT NULL DEFAULT '',
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS pages_owner ON pages(owner_id);
`

const (
	selectPage = `SELECT id, name, content, target_area, owner_id, created_at, updated_at FROM pages WHERE id = ?`
	upsertPage = `INSERT INTO pages (id, name, content, target_area, owner_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	content = excluded.content,
	target_area = excluded.target_area,
	owner_id = excluded.owner_id,
	updated_at = excluded.updated_at`
)

// PageStore keeps page templates in SQLite database. Module list is stored
// as JSON document. Connection is not shared between goroutines, access is
// serialized.
type PageStore struct {
	mu   sync.Mutex
	conn *sqlite.Conn
	log  *zap.Logger
	now  func() time.Time
}

// OpenPageStore opens (creating when necessary) database at path, ":memory:"
// gives private in-memory database.
func OpenPageStore(path string, log *zap.Logger) (*PageStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	flags := []sqlite.OpenFlags{sqlite.OpenReadWrite, sqlite.OpenCreate}
	if path == ":memory:" {
		flags = append(flags, sqlite.OpenMemory)
	} else {
		flags = append(flags, sqlite.OpenWAL)
	}
	conn, err := sqlite.OpenConn(path, flags...)
	if err != nil {
		return nil, fmt.Errorf("unable to open database '%s': %w", path, err)
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("unable to prepare database schema: %w", err)
	}
	return &PageStore{conn: conn, log: log.Named("pages"), now: time.Now}, nil
}

func (s *PageStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// GetPage returns stored template, ErrNotFound when there is no such id.
func (s *PageStore) GetPage(ctx context.Context, id string) (*page.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.conn.SetInterrupt(s.conn.SetInterrupt(ctx.Done()))

	return s.get(id)
}

func (s *PageStore) get(id string) (*page.Template, error) {
	var (
		tpl     *page.Template
		decodeE error
	)
	err := sqlitex.Execute(s.conn, selectPage, &sqlitex.ExecOptions{
		Args: []any{id},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			tpl = &page.Template{
				ID:        stmt.ColumnText(0),
				Name:      stmt.ColumnText(1),
				OwnerID:   stmt.ColumnText(4),
				CreatedAt: time.UnixMilli(stmt.ColumnInt64(5)).UTC(),
				UpdatedAt: time.UnixMilli(stmt.ColumnInt64(6)).UTC(),
			}
			area, err := common.ParseTargetArea(stmt.ColumnText(3))
			if err != nil {
				s.log.Warn("Bad target area in stored page, using default", zap.String("id", id), zap.Error(err))
				area = common.TargetAreaPc
			}
			tpl.TargetArea = area
			decodeE = json.Unmarshal([]byte(stmt.ColumnText(2)), &tpl.Content)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to load page '%s': %w", id, err)
	}
	if tpl == nil {
		return nil, fmt.Errorf("page '%s': %w", id, ErrNotFound)
	}
	if decodeE != nil {
		return nil, fmt.Errorf("unable to decode content of page '%s': %w", id, decodeE)
	}
	tpl.ModuleCount = len(tpl.Content)
	return tpl, nil
}

// SavePage inserts new template (assigning id when empty) or replaces
// existing one keeping its creation time.
func (s *PageStore) SavePage(ctx context.Context, t *page.Template) (_ *page.Template, err error) {
	if t == nil {
		return nil, errors.New("nothing to save")
	}
	content := t.Content
	if content == nil {
		content = page.Modules{}
	}
	data, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("unable to encode page content: %w", err)
	}
	id := t.ID
	if id == "" {
		id = uuid.NewString()
	}
	area := t.TargetArea
	if !area.IsValid() {
		area = common.TargetAreaPc
	}
	now := s.now().UTC().Truncate(time.Millisecond)

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.conn.SetInterrupt(s.conn.SetInterrupt(ctx.Done()))

	release := sqlitex.Save(s.conn)
	err = sqlitex.Execute(s.conn, upsertPage, &sqlitex.ExecOptions{
		Args: []any{id, t.Name, string(data), string(area), t.OwnerID, now.UnixMilli(), now.UnixMilli()},
	})
	release(&err)
	if err != nil {
		return nil, fmt.Errorf("unable to save page '%s': %w", id, err)
	}
	s.log.Debug("Page saved", zap.String("id", id), zap.Int("modules", len(content)))
	return s.get(id)
}
