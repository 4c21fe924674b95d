package peermanagement

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // pure-Go sqlite driver
)

// SQLiteManifestStore persists manifests to a single-table SQLite database,
// the same write-through shape postgres.PostgresDatabase uses for ledger
// state, scaled down to the one table a manifest cache needs.
type SQLiteManifestStore struct {
	db *sql.DB
}

// NewSQLiteManifestStore opens (creating if absent) a SQLite database at
// path and ensures the manifests table exists.
func NewSQLiteManifestStore(ctx context.Context, path string) (*SQLiteManifestStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open manifest store: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping manifest store: %w", err)
	}

	store := &SQLiteManifestStore{db: db}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteManifestStore) initSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS manifests (
			master_key TEXT PRIMARY KEY,
			signing_key BLOB NOT NULL,
			sequence INTEGER NOT NULL,
			domain TEXT NOT NULL,
			master_signature BLOB NOT NULL,
			signing_signature BLOB NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("init manifest schema: %w", err)
	}
	return nil
}

// Load returns every manifest in the store.
func (s *SQLiteManifestStore) Load() ([]*Manifest, error) {
	rows, err := s.db.Query(`SELECT master_key, signing_key, sequence, domain, master_signature, signing_signature FROM manifests`)
	if err != nil {
		return nil, fmt.Errorf("load manifests: %w", err)
	}
	defer rows.Close()

	var out []*Manifest
	for rows.Next() {
		var masterKey, domain string
		var signingKeyBytes, masterSig, signingSig []byte
		var sequence uint32
		if err := rows.Scan(&masterKey, &signingKeyBytes, &sequence, &domain, &masterSig, &signingSig); err != nil {
			return nil, fmt.Errorf("scan manifest row: %w", err)
		}

		master, err := ParsePublicKeyToken(masterKey)
		if err != nil {
			continue
		}
		signing, err := NewPublicKeyToken(signingKeyBytes)
		if err != nil {
			continue
		}

		out = append(out, &Manifest{
			Master:            master,
			Signing:           signing,
			Sequence:          sequence,
			Domain:            domain,
			MasterSignature:   masterSig,
			SigningSignature:  signingSig,
		})
	}
	return out, rows.Err()
}

// Save upserts a manifest keyed by its master key.
func (s *SQLiteManifestStore) Save(m *Manifest) error {
	_, err := s.db.Exec(`
		INSERT INTO manifests (master_key, signing_key, sequence, domain, master_signature, signing_signature)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(master_key) DO UPDATE SET
			signing_key = excluded.signing_key,
			sequence = excluded.sequence,
			domain = excluded.domain,
			master_signature = excluded.master_signature,
			signing_signature = excluded.signing_signature
	`, m.Master.Encode(), m.Signing.Bytes(), m.Sequence, m.Domain, m.MasterSignature, m.SigningSignature)
	if err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *SQLiteManifestStore) Close() error {
	return s.db.Close()
}
