// Public domain.

// Package store keeps observation subsets in a SQLite database.
//
// Each record is stored with its 80 column text and a few decoded columns
// for querying with SQL.  Records read back are decoded from the stored
// text, so they encode to exactly what was saved.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	_ "github.com/mattn/go-sqlite3"

	"github.com/soniakeys/obs80/mpc"
)

const schema = `
CREATE TABLE IF NOT EXISTS observations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	designation TEXT NOT NULL,
	mjd REAL NOT NULL,
	ra REAL NOT NULL,
	dec REAL NOT NULL,
	mag REAL,
	band TEXT NOT NULL,
	obscode TEXT NOT NULL,
	raw TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_observations_designation ON observations(designation);
CREATE INDEX IF NOT EXISTS idx_observations_obscode ON observations(obscode);
`

const insert = `INSERT INTO observations
	(designation, mjd, ra, dec, mag, band, obscode, raw)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// Store is an observation database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Batch adds records in a single transaction.
type Batch struct {
	tx   *sql.Tx
	stmt *sql.Stmt
	ctx  context.Context
	n    int
}

// Begin starts a Batch.  It must be ended with Commit or Rollback.
func (s *Store) Begin(ctx context.Context) (*Batch, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	return &Batch{tx: tx, stmt: stmt, ctx: ctx}, nil
}

// Add adds r to the batch.
func (b *Batch) Add(r *mpc.Record) error {
	ra, dec := r.Coord().Deg()
	var mag sql.NullFloat64
	if m := r.Mag(); m.Valid {
		mag = sql.NullFloat64{Float64: m.Value.Float(), Valid: true}
	}
	_, err := b.stmt.ExecContext(b.ctx,
		r.Designation().Key(),
		r.Time().MJD(),
		ra, dec, mag,
		string(r.Band()),
		r.Obscode(),
		mpc.Encode(r))
	if err != nil {
		return fmt.Errorf("failed to insert record %d: %w", b.n+1, err)
	}
	b.n++
	return nil
}

// Len returns the number of records added.
func (b *Batch) Len() int { return b.n }

// Commit commits the batch.
func (b *Batch) Commit() error {
	b.stmt.Close()
	if err := b.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Rollback abandons the batch.
func (b *Batch) Rollback() error {
	b.stmt.Close()
	return b.tx.Rollback()
}

// Save stores the records of src in one transaction and returns the
// number stored.  Line errors from src are skipped.  On any other error
// nothing is stored.
func (s *Store) Save(ctx context.Context, src mpc.Source) (int, error) {
	b, err := s.Begin(ctx)
	if err != nil {
		return 0, err
	}
	for {
		r, err := src.Read()
		if err == io.EOF {
			break
		}
		if mpc.IsLineError(err) {
			continue
		}
		if err == nil {
			err = b.Add(r)
		}
		if err != nil {
			b.Rollback()
			return 0, err
		}
	}
	if err := b.Commit(); err != nil {
		return 0, err
	}
	return b.n, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM observations`).Scan(&n)
	return n, err
}

// ErrStored is wrapped by errors decoding stored text.
var ErrStored = errors.New("stored observation does not decode")

// Each calls fn with every stored record in the order stored.  A non-nil
// return from fn stops the iteration and is returned.
func (s *Store) Each(ctx context.Context, fn func(*mpc.Record) error) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, raw FROM observations ORDER BY id`)
	if err != nil {
		return fmt.Errorf("failed to query observations: %w", err)
	}
	defer rows.Close()
	dec := mpc.Decoder{Temporary: true}
	for rows.Next() {
		var id int64
		var raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return err
		}
		r, err := dec.Decode(raw)
		if err != nil {
			return fmt.Errorf("%w: id %d: %v", ErrStored, id, err)
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Designations returns the distinct designation keys stored, sorted.
func (s *Store) Designations(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT designation FROM observations ORDER BY designation`)
	if err != nil {
		return nil, fmt.Errorf("failed to query designations: %w", err)
	}
	defer rows.Close()
	var d []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		d = append(d, k)
	}
	return d, rows.Err()
}
