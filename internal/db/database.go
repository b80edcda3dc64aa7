package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when no dictionary entry matches.
var ErrNotFound = errors.New("dictionary entry not found")

const entriesTable = "dictionary_entries"

var entryColumns = []string{
	"id",
	"word",
	"language",
	"definition",
	"part_of_speech",
	"examples",
	"created_at",
}

// Database is the dictionary store over SQLite or MySQL.
type Database struct {
	conn *sqlx.DB
	sq   sq.StatementBuilderType
}

func newDatabase(conn *sqlx.DB) *Database {
	return &Database{conn: conn, sq: sq.StatementBuilder}
}

// NewFromDB wraps an existing connection without touching the schema.
func NewFromDB(conn *sqlx.DB) *Database {
	return newDatabase(conn)
}

// Close closes the database connection
func (db *Database) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

func (db *Database) DriverName() string {
	return db.conn.DriverName()
}

func (db *Database) selectEntries() sq.SelectBuilder {
	return db.sq.Select(entryColumns...).From(entriesTable)
}

// FindEntry returns the entry stored for exactly this word and language.
// Comparison is case-sensitive.
func (db *Database) FindEntry(ctx context.Context, word, language string) (*DictionaryEntry, error) {
	return findEntry(ctx, db.conn, db.selectEntries(), word, language)
}

func findEntry(ctx context.Context, q sqlx.QueryerContext, sel sq.SelectBuilder, word, language string) (*DictionaryEntry, error) {
	query, args, err := sel.
		Where("word = ? AND language = ?", word, language).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var entry DictionaryEntry
	if err := sqlx.GetContext(ctx, q, &entry, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find dictionary entry: %w", err)
	}
	return &entry, nil
}

func (db *Database) insertIfAbsent(ctx context.Context, ex sqlx.ExecerContext, entry *DictionaryEntry) (bool, error) {
	ins := db.sq.Insert(entriesTable).
		Columns("word", "language", "definition", "part_of_speech", "examples", "created_at").
		Values(entry.Word, entry.Language, entry.Definition, entry.PartOfSpeech, entry.Examples, entry.CreatedAt)
	if db.DriverName() == "mysql" {
		ins = ins.Options("IGNORE")
	} else {
		ins = ins.Suffix("ON CONFLICT(word, language) DO NOTHING")
	}

	query, args, err := ins.ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build insert: %w", err)
	}

	result, err := ex.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to insert dictionary entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

// SaveEntry inserts entry unless a row for the same word and language
// already exists, and returns the stored row either way. The boolean
// reports whether this call created it.
func (db *Database) SaveEntry(ctx context.Context, entry *DictionaryEntry) (*DictionaryEntry, bool, error) {
	var (
		saved    *DictionaryEntry
		inserted bool
	)
	err := RunInTx(ctx, db.conn, func(ctx context.Context, tx *sqlx.Tx) error {
		var err error
		inserted, err = db.insertIfAbsent(ctx, tx, entry)
		if err != nil {
			return err
		}
		saved, err = findEntry(ctx, tx, db.selectEntries(), entry.Word, entry.Language)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return saved, inserted, nil
}

// Get retrieves a dictionary entry by ID
func (db *Database) Get(ctx context.Context, id int64) (*DictionaryEntry, error) {
	query, args, err := db.selectEntries().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var entry DictionaryEntry
	if err := db.conn.GetContext(ctx, &entry, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get dictionary entry: %w", err)
	}
	return &entry, nil
}

// ListRecent returns up to limit entries, newest first.
func (db *Database) ListRecent(ctx context.Context, limit uint64) ([]DictionaryEntry, error) {
	return db.list(ctx, db.selectEntries().Limit(limit))
}

// List retrieves all entries ordered by creation date (newest first)
func (db *Database) List(ctx context.Context) ([]DictionaryEntry, error) {
	return db.list(ctx, db.selectEntries())
}

func (db *Database) list(ctx context.Context, sel sq.SelectBuilder) ([]DictionaryEntry, error) {
	query, args, err := sel.OrderBy("created_at DESC", "id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	entries := []DictionaryEntry{}
	if err := db.conn.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list dictionary entries: %w", err)
	}
	return entries, nil
}

// Count returns the total number of stored entries
func (db *Database) Count(ctx context.Context) (int, error) {
	query, args, err := db.sq.Select("COUNT(*)").From(entriesTable).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	var count int
	if err := db.conn.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count dictionary entries: %w", err)
	}
	return count, nil
}

// RunInTx runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back; otherwise, it is committed.
func RunInTx(ctx context.Context, db *sqlx.DB, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback transaction: %w (original error: %v)", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
