// Package astcache fronts pkg/parserservice with a persistent,
// content-hash-keyed cache: repeated analysis runs over the same page
// source skip re-parsing entirely. This replaces the teacher's in-memory
// LRUFileCache (pkg/parser/cache.go) with a disk-backed store, since a
// batch run over thousands of pages benefits from a cache that survives
// process restarts — the same reasoning the teacher's cache doc comment
// gives for keeping trees around at all, carried one step further.
package astcache

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/minio/highwayhash"

	"github.com/taintmini/taintmini/pkg/ast"
	"github.com/taintmini/taintmini/pkg/parserservice"
)

// hashKey is a fixed, non-secret highwayhash key: the cache is a
// content-addressed store, not an authentication boundary, so a
// constant key is sufficient (it only needs to be stable across runs).
var hashKey = make([]byte, 32)

// Cache wraps a parserservice.Service with a sqlite-backed content cache.
type Cache struct {
	db  *sql.DB
	svc *parserservice.Service
}

// Open opens (creating if necessary) a sqlite database at path and
// returns a Cache fronting a fresh parser service.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("astcache: open %s: %w", path, err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS ast_cache (
		content_hash TEXT PRIMARY KEY,
		document     BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("astcache: migrate: %w", err)
	}
	return &Cache{db: db, svc: parserservice.New()}, nil
}

// Close releases the underlying sqlite connection.
func (c *Cache) Close() error { return c.db.Close() }

// ContentHash returns the cache key for source: a highwayhash digest, the
// same family of fast keyed hash the teacher's pack already depends on
// (github.com/minio/highwayhash), chosen over a cryptographic hash
// because this is a non-adversarial cache-key use, not a security
// boundary.
func ContentHash(source []byte) string {
	sum := highwayhash.Sum(source, hashKey)
	return fmt.Sprintf("%x", sum)
}

// Parse returns the ast.Document for source, either from the persistent
// cache or by invoking the parser service and storing the result.
func (c *Cache) Parse(source []byte) (*ast.Document, error) {
	key := ContentHash(source)

	var blob []byte
	err := c.db.QueryRow(`SELECT document FROM ast_cache WHERE content_hash = ?`, key).Scan(&blob)
	switch {
	case err == nil:
		var doc ast.Document
		if jerr := json.Unmarshal(blob, &doc); jerr == nil {
			return &doc, nil
		}
		// a corrupt cache row degrades to a fresh parse rather than a
		// failure; the row is overwritten below.
	case err == sql.ErrNoRows:
		// miss, fall through to parse
	default:
		return nil, fmt.Errorf("astcache: lookup: %w", err)
	}

	result, perr := c.svc.Parse(source)
	if perr != nil {
		return nil, perr
	}

	if encoded, jerr := json.Marshal(result.Doc); jerr == nil {
		if _, err := c.db.Exec(
			`INSERT OR REPLACE INTO ast_cache (content_hash, document) VALUES (?, ?)`,
			key, encoded,
		); err != nil {
			return nil, fmt.Errorf("astcache: store: %w", err)
		}
	}

	return result.Doc, nil
}
