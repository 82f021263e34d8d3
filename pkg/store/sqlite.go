package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the canonical single-file archive.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates/opens the archive database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One short-lived process per hook event. A single shared connection
	// avoids writer lock contention under SQLite.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) init() error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA synchronous=NORMAL;`,
		`PRAGMA temp_store=MEMORY;`,
		`PRAGMA busy_timeout=5000;`,
		`CREATE TABLE IF NOT EXISTS frames (
			id TEXT PRIMARY KEY,
			content_hash TEXT NOT NULL,
			kind TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			session_id TEXT NOT NULL DEFAULT '',
			meta_json TEXT NOT NULL DEFAULT '{}',
			created_at_ms INTEGER NOT NULL
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS frames_hash_unique ON frames(content_hash);`,
		`CREATE INDEX IF NOT EXISTS frames_created_idx ON frames(created_at_ms DESC);`,
		`CREATE INDEX IF NOT EXISTS frames_session_idx ON frames(session_id, kind, created_at_ms DESC);`,
		`CREATE TABLE IF NOT EXISTS archive_meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL DEFAULT '',
			updated_at_ms INTEGER NOT NULL
		);`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS frames_fts USING fts5(frame_id UNINDEXED, title, content, tokenize='unicode61 remove_diacritics 2');`,
		// frames_fts stores its own copy of the text, so the sync triggers
		// use plain DML keyed on frame_id. The fts5 'delete' command is
		// valid only on external-content tables.
		`CREATE TRIGGER IF NOT EXISTS frames_ai AFTER INSERT ON frames BEGIN
			INSERT INTO frames_fts(frame_id, title, content) VALUES (new.id, new.title, new.content);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS frames_au AFTER UPDATE OF title, content ON frames BEGIN
			DELETE FROM frames_fts WHERE frame_id = old.id;
			INSERT INTO frames_fts(frame_id, title, content) VALUES(new.id, new.title, new.content);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS frames_ad AFTER DELETE ON frames BEGIN
			DELETE FROM frames_fts WHERE frame_id = old.id;
		END;`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init sqlite schema failed on %q: %w", trimSQL(stmt), err)
		}
	}
	return nil
}

func trimSQL(sql string) string {
	line := strings.TrimSpace(sql)
	if len(line) > 96 {
		return line[:96] + "..."
	}
	return line
}

func nowMS() int64 { return time.Now().UnixMilli() }

func encodeMap(m map[string]string) string {
	if len(m) == 0 {
		return "{}"
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func decodeMap(raw string) map[string]string {
	if raw == "" {
		return map[string]string{}
	}
	out := map[string]string{}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return map[string]string{}
	}
	return out
}

// contentHash addresses a record by what it says, not when it was said, so
// replayed hook events collapse into one row.
func contentHash(rec Record) string {
	h := sha256.New()
	for _, part := range []string{rec.Kind, rec.SessionID, rec.Title, rec.Content} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func (s *SQLiteStore) Put(ctx context.Context, rec Record) (string, error) {
	if strings.TrimSpace(rec.Kind) == "" {
		rec.Kind = KindObservation
	}
	if rec.CreatedAtMS == 0 {
		rec.CreatedAtMS = nowMS()
	}
	hash := contentHash(rec)
	if rec.ID == "" {
		rec.ID = hash
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("put record begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var existingID string
	row := tx.QueryRowContext(ctx, `SELECT id FROM frames WHERE content_hash = ?`, hash)
	err = row.Scan(&existingID)
	if err == nil {
		if len(rec.Meta) > 0 {
			if _, err := tx.ExecContext(ctx, `UPDATE frames SET meta_json = ? WHERE id = ?`, encodeMap(rec.Meta), existingID); err != nil {
				return "", fmt.Errorf("put record refresh meta: %w", err)
			}
		}
		if err := tx.Commit(); err != nil {
			return "", fmt.Errorf("put record commit: %w", err)
		}
		return existingID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("put record lookup: %w", err)
	}

	// Same id with new content is a rewrite, not a new row. Session
	// summaries reuse the session's id when a session ends twice.
	var idCount int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM frames WHERE id = ?`, rec.ID).Scan(&idCount); err != nil {
		return "", fmt.Errorf("put record id lookup: %w", err)
	}
	if idCount > 0 {
		if _, err := tx.ExecContext(ctx, `
UPDATE frames SET content_hash = ?, kind = ?, type = ?, title = ?, content = ?, session_id = ?, meta_json = ?, created_at_ms = ?
WHERE id = ?`,
			hash, rec.Kind, rec.Type, rec.Title, rec.Content, rec.SessionID, encodeMap(rec.Meta), rec.CreatedAtMS, rec.ID); err != nil {
			return "", fmt.Errorf("put record rewrite: %w", err)
		}
	} else {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO frames(id, content_hash, kind, type, title, content, session_id, meta_json, created_at_ms)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, hash, rec.Kind, rec.Type, rec.Title, rec.Content, rec.SessionID, encodeMap(rec.Meta), rec.CreatedAtMS); err != nil {
			return "", fmt.Errorf("put record insert: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("put record commit: %w", err)
	}
	return rec.ID, nil
}

func (s *SQLiteStore) Find(ctx context.Context, query string, opts FindOptions) (FindResult, error) {
	k := opts.K
	if k <= 0 {
		k = 10
	}
	match := buildMatch(query, opts.Mode)
	if match == "" {
		return FindResult{Frames: []Frame{}}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT f.id, f.kind, f.type, f.title, f.content, f.session_id, f.meta_json, f.created_at_ms,
	bm25(frames_fts) AS rank,
	snippet(frames_fts, 2, '', '', '...', 16)
FROM frames_fts ft
JOIN frames f ON f.id = ft.frame_id
WHERE frames_fts MATCH ?
AND (? = '' OR f.kind = ?)
ORDER BY rank, f.created_at_ms DESC
LIMIT ?`, match, opts.Kind, opts.Kind, k)
	if err != nil {
		return FindResult{}, fmt.Errorf("find records: %w", err)
	}
	defer rows.Close()

	out := []Frame{}
	for rows.Next() {
		var fr Frame
		var metaRaw string
		var rank float64
		if err := rows.Scan(&fr.ID, &fr.Kind, &fr.Type, &fr.Title, &fr.Content, &fr.SessionID, &metaRaw, &fr.CreatedAtMS, &rank, &fr.Snippet); err != nil {
			return FindResult{}, fmt.Errorf("scan find hit: %w", err)
		}
		fr.Meta = decodeMap(metaRaw)
		// bm25 ranks best-first with the most negative value.
		fr.Score = -rank
		out = append(out, fr)
	}
	if err := rows.Err(); err != nil {
		return FindResult{}, fmt.Errorf("iterate find hits: %w", err)
	}
	return FindResult{Frames: out}, nil
}

// buildMatch quotes each term so user text cannot smuggle FTS5 operators.
// Terms without a single letter or digit tokenize to nothing and are dropped.
func buildMatch(query, mode string) string {
	words := strings.Fields(query)
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ReplaceAll(w, `"`, ``)
		if !hasAlnum(w) {
			continue
		}
		quoted = append(quoted, `"`+w+`"`)
	}
	if len(quoted) == 0 {
		return ""
	}
	switch mode {
	case ModePhrase:
		return `"` + strings.ReplaceAll(strings.Join(words, " "), `"`, ``) + `"`
	case ModeAny:
		return strings.Join(quoted, " OR ")
	default:
		return strings.Join(quoted, " ")
	}
}

func hasAlnum(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func (s *SQLiteStore) Ask(ctx context.Context, question string, opts AskOptions) (Answer, error) {
	k := opts.K
	if k <= 0 {
		k = 3
	}
	res, err := s.Find(ctx, question, FindOptions{K: k, Mode: firstNonEmpty(opts.Mode, ModeAny)})
	if err != nil {
		return Answer{}, fmt.Errorf("ask search: %w", err)
	}
	if len(res.Frames) == 0 {
		return Answer{Text: "No stored memory matches that question."}, nil
	}

	var b strings.Builder
	sources := make([]string, 0, len(res.Frames))
	for i, fr := range res.Frames {
		sources = append(sources, fr.ID)
		line := strings.TrimSpace(fr.Snippet)
		if line == "" {
			line = strings.TrimSpace(firstNonEmpty(fr.Title, fr.Content))
		}
		if i == 0 {
			fmt.Fprintf(&b, "%s", line)
			continue
		}
		fmt.Fprintf(&b, "\nRelated: %s", line)
	}
	return Answer{Text: b.String(), Sources: sources}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func (s *SQLiteStore) Timeline(ctx context.Context, opts TimelineOptions) ([]Record, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	order := "ASC"
	if opts.Reverse {
		order = "DESC"
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
SELECT id, kind, type, title, content, session_id, meta_json, created_at_ms
FROM frames
WHERE (? = '' OR session_id = ?)
AND (? = '' OR kind = ?)
ORDER BY created_at_ms %s, rowid %s
LIMIT ?`, order, order),
		opts.SessionID, opts.SessionID, opts.Kind, opts.Kind, limit)
	if err != nil {
		return nil, fmt.Errorf("timeline scan: %w", err)
	}
	defer rows.Close()

	out := make([]Record, 0, limit)
	for rows.Next() {
		var rec Record
		var metaRaw string
		if err := rows.Scan(&rec.ID, &rec.Kind, &rec.Type, &rec.Title, &rec.Content, &rec.SessionID, &metaRaw, &rec.CreatedAtMS); err != nil {
			return nil, fmt.Errorf("scan timeline record: %w", err)
		}
		rec.Meta = decodeMap(metaRaw)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timeline records: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM frames`)
	if err := row.Scan(&st.FrameCount); err != nil {
		return Stats{}, fmt.Errorf("count frames: %w", err)
	}
	if info, err := os.Stat(s.path); err == nil {
		st.SizeBytes = info.Size()
	}
	return st, nil
}

func (s *SQLiteStore) Sweep(ctx context.Context, keepDays int) (int, error) {
	if keepDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -keepDays).UnixMilli()
	res, err := s.db.ExecContext(ctx, `
DELETE FROM frames
WHERE kind = ? AND created_at_ms < ?`, KindObservation, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep old observations: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *SQLiteStore) GetMeta(ctx context.Context, key string) (string, error) {
	row := s.db.QueryRowContext(ctx, `SELECT value FROM archive_meta WHERE key = ?`, key)
	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("get meta %q: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO archive_meta(key, value, updated_at_ms)
VALUES(?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
	value = excluded.value,
	updated_at_ms = excluded.updated_at_ms`, key, value, nowMS())
	if err != nil {
		return fmt.Errorf("set meta %q: %w", key, err)
	}
	return nil
}
