package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/matsen/bibsync/internal/author"
	"github.com/matsen/bibsync/internal/reference"
	"github.com/matsen/bibsync/internal/venue"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

var (
	_ venue.Registry = (*DB)(nil)
	_ author.Lookup  = (*DB)(nil)
)

const selectVenueFields = `kind, id, name, publisher, issn, isbn, rankings_json`

const selectPersonFields = `id, first, von, last, jr, orcid`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		-- Publications; record_json holds the full kind envelope
		CREATE TABLE IF NOT EXISTS publications (
			key TEXT PRIMARY KEY,
			serial INTEGER,
			kind TEXT NOT NULL,
			doi TEXT,
			title TEXT NOT NULL,
			pub_year INTEGER,
			pub_month INTEGER,
			venue_kind TEXT,
			venue_id INTEGER,
			venue_name TEXT,
			record_json TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_publications_doi ON publications(doi) WHERE doi IS NOT NULL AND doi != '';

		-- Full-text search virtual table (standalone, not external content)
		CREATE VIRTUAL TABLE IF NOT EXISTS publications_fts USING fts5(
			key,
			title,
			abstract,
			authors_text,
			pub_year
		);

		-- Venue registry; ids are unique per kind
		CREATE TABLE IF NOT EXISTS venues (
			kind TEXT NOT NULL,
			id INTEGER NOT NULL,
			name TEXT NOT NULL,
			publisher TEXT,
			issn TEXT,
			isbn TEXT,
			rankings_json TEXT,
			PRIMARY KEY (kind, id)
		);

		CREATE INDEX IF NOT EXISTS idx_venues_name ON venues(kind, name);

		-- Known persons
		CREATE TABLE IF NOT EXISTS persons (
			id INTEGER PRIMARY KEY,
			first TEXT,
			von TEXT,
			last TEXT NOT NULL,
			jr TEXT,
			orcid TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_persons_last ON persons(last COLLATE NOCASE);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildPublications clears the publication tables and rebuilds them from a JSONL file.
func (d *DB) RebuildPublications(jsonlPath string) (int, error) {
	pubs, err := ReadPublications(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM publications"); err != nil {
		return 0, fmt.Errorf("clearing publications table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM publications_fts"); err != nil {
		return 0, fmt.Errorf("clearing publications_fts table: %w", err)
	}

	pubStmt, err := tx.Prepare(`
		INSERT INTO publications (
			key, serial, kind, doi, title, pub_year, pub_month,
			venue_kind, venue_id, venue_name, record_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing publications insert: %w", err)
	}
	defer pubStmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO publications_fts (key, title, abstract, authors_text, pub_year)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for _, pub := range pubs {
		h := pub.Head()
		record, err := reference.Marshal(pub)
		if err != nil {
			return 0, fmt.Errorf("encoding %s: %w", h.Key, err)
		}

		var venueKind, venueName sql.NullString
		var venueID sql.NullInt64
		if v := reference.VenueOf(pub); v != nil {
			venueKind = nullableStringValue(string(v.Kind))
			venueName = nullableStringValue(v.Name)
			if v.Persistent() {
				venueID = sql.NullInt64{Int64: v.ID, Valid: true}
			}
		}

		_, err = pubStmt.Exec(
			h.Key, h.Serial, string(pub.Kind()), nullableStringValue(h.DOI), h.Title,
			h.Published.Year, int(h.Published.Month),
			venueKind, venueID, venueName, string(record),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting publication %s: %w", h.Key, err)
		}

		_, err = ftsStmt.Exec(h.Key, h.Title, h.Abstract, formatAuthorsText(h.Authors), strconv.Itoa(h.Published.Year))
		if err != nil {
			return 0, fmt.Errorf("inserting fts for %s: %w", h.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(pubs), nil
}

// RebuildVenues clears the venue table and rebuilds it from a JSONL file.
func (d *DB) RebuildVenues(jsonlPath string) (int, error) {
	venues, err := ReadVenues(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM venues"); err != nil {
		return 0, fmt.Errorf("clearing venues table: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO venues (` + selectVenueFields + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing venues insert: %w", err)
	}
	defer stmt.Close()

	for _, v := range venues {
		var rankings []byte
		if len(v.Rankings) > 0 {
			rankings, err = json.Marshal(v.Rankings)
			if err != nil {
				return 0, fmt.Errorf("marshaling rankings for %s: %w", v.Name, err)
			}
		}
		_, err = stmt.Exec(
			string(v.Kind), v.ID, venue.NormalizeName(v.Name),
			nullableStringValue(v.Publisher), nullableStringValue(v.ISSN), nullableStringValue(v.ISBN),
			nullableString(rankings),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting %s venue %d: %w", v.Kind, v.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(venues), nil
}

// RebuildPersons clears the person table and rebuilds it from a JSONL file.
func (d *DB) RebuildPersons(jsonlPath string) (int, error) {
	people, err := ReadPersons(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM persons"); err != nil {
		return 0, fmt.Errorf("clearing persons table: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO persons (` + selectPersonFields + `) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing persons insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range people {
		if !p.Known() {
			return 0, fmt.Errorf("person %q has no id", p.DisplayName())
		}
		_, err = stmt.Exec(p.ID,
			nullableStringValue(p.First), nullableStringValue(p.Von), p.Last,
			nullableStringValue(p.Jr), nullableStringValue(p.ORCID))
		if err != nil {
			return 0, fmt.Errorf("inserting person %d: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(people), nil
}

// formatAuthorsText creates a searchable text representation of authors.
func formatAuthorsText(authors []reference.Person) string {
	var names []string
	for _, a := range authors {
		names = append(names, a.DisplayName())
	}
	return strings.Join(names, ", ")
}

// GetByKey retrieves a publication by its citation key.
// Returns nil without error if there is none.
func (d *DB) GetByKey(key string) (reference.Publication, error) {
	row := d.db.QueryRow(`SELECT record_json FROM publications WHERE key = ?`, key)
	return scanPublication(row)
}

// Search performs a full-text search and returns matching publications.
func (d *DB) Search(query string, limit int) ([]reference.Publication, error) {
	return d.SearchWithFilters(SearchFilters{Keyword: query}, limit)
}

// SearchFilters contains optional filters for SearchWithFilters.
type SearchFilters struct {
	Keyword  string         // General keyword search across all text fields
	Authors  []string       // Author names (AND logic, prefix matching)
	YearFrom int            // Minimum publication year (0 = no minimum)
	YearTo   int            // Maximum publication year (0 = no maximum)
	Kind     reference.Kind // Publication kind ("" = any)
	Venue    string         // Venue name substring (case-insensitive)
	DOI      string         // Exact DOI match
}

// SearchWithFilters performs a search with multiple optional filters.
// Returns publications matching ALL specified criteria, ordered by key.
// A limit of 0 or less means no limit.
func (d *DB) SearchWithFilters(filters SearchFilters, limit int) ([]reference.Publication, error) {
	var ftsTerms []string
	var args []interface{}

	if filters.Keyword != "" {
		ftsTerms = append(ftsTerms, prepareFTSQuery(filters.Keyword))
	}
	for _, a := range filters.Authors {
		if a != "" {
			ftsTerms = append(ftsTerms, "authors_text:"+prepareAuthorQuery(a))
		}
	}

	query := `SELECT record_json FROM publications WHERE 1=1`
	if len(ftsTerms) > 0 {
		query += ` AND key IN (SELECT key FROM publications_fts WHERE publications_fts MATCH ?)`
		args = append(args, strings.Join(ftsTerms, " AND "))
	}

	if filters.YearFrom > 0 {
		query += " AND pub_year >= ?"
		args = append(args, filters.YearFrom)
	}
	if filters.YearTo > 0 {
		query += " AND pub_year <= ?"
		args = append(args, filters.YearTo)
	}
	if filters.Kind != "" {
		query += " AND kind = ?"
		args = append(args, string(filters.Kind))
	}
	if filters.Venue != "" {
		query += " AND venue_name LIKE ?"
		args = append(args, "%"+filters.Venue+"%")
	}
	if filters.DOI != "" {
		query += " AND doi = ?"
		args = append(args, filters.DOI)
	}

	query += " ORDER BY key"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching with filters: %w", err)
	}
	defer rows.Close()

	return scanPublications(rows)
}

// prepareAuthorQuery prepares an author name for FTS5 search with prefix matching.
// It adds a wildcard (*) to enable fuzzy matching (e.g., "Tim" matches "Timothy").
func prepareAuthorQuery(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return name
	}

	var terms []string
	for _, part := range strings.Fields(name) {
		escaped := strings.ReplaceAll(part, "\"", "\"\"")
		terms = append(terms, "\""+escaped+"\"*")
	}

	// Use OR for multi-word author queries (match any part)
	return "(" + strings.Join(terms, " OR ") + ")"
}

// ListAll returns all publications ordered by key, optionally limited.
func (d *DB) ListAll(limit int) ([]reference.Publication, error) {
	return d.SearchWithFilters(SearchFilters{}, limit)
}

// Count returns the total number of publications.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM publications").Scan(&count)
	return count, err
}

// FindByID returns the registry venue of the given kind and id, or nil.
func (d *DB) FindByID(kind reference.VenueKind, id int64) (*reference.Venue, error) {
	row := d.db.QueryRow(`SELECT `+selectVenueFields+` FROM venues WHERE kind = ? AND id = ?`, string(kind), id)
	v, err := scanVenue(row)
	if err != nil {
		return nil, fmt.Errorf("finding %s venue %d: %w", kind, id, err)
	}
	return v, nil
}

// FindByExactName returns the venues of a kind whose name equals name,
// ordered by id. The comparison is case-sensitive.
func (d *DB) FindByExactName(kind reference.VenueKind, name string) ([]reference.Venue, error) {
	rows, err := d.db.Query(`SELECT `+selectVenueFields+` FROM venues WHERE kind = ? AND name = ? ORDER BY id`,
		string(kind), name)
	if err != nil {
		return nil, fmt.Errorf("finding %s venue %q: %w", kind, name, err)
	}
	defer rows.Close()

	return scanVenues(rows)
}

// ListVenues returns the registry venues of a kind, or of every kind when
// kind is empty.
func (d *DB) ListVenues(kind reference.VenueKind) ([]reference.Venue, error) {
	query := `SELECT ` + selectVenueFields + ` FROM venues`
	var args []interface{}
	if kind != "" {
		query += " WHERE kind = ?"
		args = append(args, string(kind))
	}
	query += " ORDER BY kind, id"

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing venues: %w", err)
	}
	defer rows.Close()

	return scanVenues(rows)
}

// FindPerson returns the known person whose name matches n. Last names
// are looked up case-insensitively; the remaining parts must agree as in
// author.SameName. The lowest id wins when several people match.
func (d *DB) FindPerson(n author.Name) (reference.Person, bool, error) {
	rows, err := d.db.Query(`SELECT `+selectPersonFields+` FROM persons WHERE last = ? COLLATE NOCASE ORDER BY id`, n.Last)
	if err != nil {
		return reference.Person{}, false, fmt.Errorf("finding person %q: %w", n.Last, err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return reference.Person{}, false, err
		}
		if author.SameName(p, n) {
			return p, true, nil
		}
	}
	return reference.Person{}, false, rows.Err()
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPublication(s scanner) (reference.Publication, error) {
	var record string
	if err := s.Scan(&record); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return reference.Unmarshal([]byte(record))
}

func scanPublications(rows *sql.Rows) ([]reference.Publication, error) {
	var pubs []reference.Publication
	for rows.Next() {
		pub, err := scanPublication(rows)
		if err != nil {
			return nil, err
		}
		if pub != nil {
			pubs = append(pubs, pub)
		}
	}
	return pubs, rows.Err()
}

func scanVenue(s scanner) (*reference.Venue, error) {
	var v reference.Venue
	var kind string
	var publisher, issn, isbn, rankings sql.NullString

	err := s.Scan(&kind, &v.ID, &v.Name, &publisher, &issn, &isbn, &rankings)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	v.Kind = reference.VenueKind(kind)
	v.Publisher = publisher.String
	v.ISSN = issn.String
	v.ISBN = isbn.String
	if rankings.Valid && rankings.String != "" {
		if err := json.Unmarshal([]byte(rankings.String), &v.Rankings); err != nil {
			return nil, fmt.Errorf("parsing rankings JSON for %s %d: %w", kind, v.ID, err)
		}
	}
	return &v, nil
}

func scanVenues(rows *sql.Rows) ([]reference.Venue, error) {
	var venues []reference.Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		if v != nil {
			venues = append(venues, *v)
		}
	}
	return venues, rows.Err()
}

func scanPerson(s scanner) (reference.Person, error) {
	var p reference.Person
	var first, von, jr, orcid sql.NullString
	if err := s.Scan(&p.ID, &first, &von, &p.Last, &jr, &orcid); err != nil {
		return reference.Person{}, err
	}
	p.First = first.String
	p.Von = von.String
	p.Jr = jr.String
	p.ORCID = orcid.String
	return p, nil
}

func nullableString(b []byte) sql.NullString {
	if len(b) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// If query contains special chars, quote it
	if strings.ContainsAny(query, "\"*+-:(){}[]^~") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}
