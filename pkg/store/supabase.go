package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	supabase "github.com/supabase-community/supabase-go"

	"dailybrief/pkg/domain"
)

// SupabaseConfig holds configuration required to connect to Supabase.
type SupabaseConfig struct {
	// SupabaseURL is the Supabase project URL.
	// Example: "https://[project-ref].supabase.co"
	SupabaseURL string

	// SupabaseKey is the Supabase API key (service_role for server-side use).
	SupabaseKey string

	// Password is the database password. When present, records are read and
	// written over a direct Postgres connection; otherwise the store works
	// in REST API mode through the SDK.
	Password string

	// ConnectionString overrides the connection string built from URL and
	// password.
	ConnectionString string
}

const supabaseTable = "dispatch_records"

// SupabaseStore keeps dispatch records in a Supabase project, in REST API
// mode by default with a direct Postgres mode when credentials allow.
type SupabaseStore struct {
	db  *sql.DB
	sdk *supabase.Client
	cfg SupabaseConfig
}

// NewSupabaseStore constructs a Supabase store; call Connect before use
func NewSupabaseStore(cfg SupabaseConfig) *SupabaseStore {
	return &SupabaseStore{cfg: cfg}
}

// Connect initializes the SDK client and, when a password or connection
// string is available, the direct database connection. REST API mode alone
// is enough to operate.
func (s *SupabaseStore) Connect(ctx context.Context) error {
	if s.cfg.SupabaseURL != "" && s.cfg.SupabaseKey != "" {
		sdkClient, err := supabase.NewClient(s.cfg.SupabaseURL, s.cfg.SupabaseKey, nil)
		if err != nil {
			return fmt.Errorf("initialize supabase SDK: %w", err)
		}
		s.sdk = sdkClient
	}

	connStr := s.cfg.ConnectionString
	if connStr == "" && s.cfg.Password != "" {
		built, err := s.buildConnectionString()
		if err != nil {
			if s.sdk != nil {
				return nil // REST API mode only
			}
			return fmt.Errorf("build connection string: %w", err)
		}
		connStr = built
	}

	if connStr != "" {
		db, err := sql.Open("pgx", connStr)
		if err == nil {
			err = db.PingContext(ctx)
		}
		if err != nil {
			if s.sdk != nil {
				return nil // REST API mode only
			}
			return fmt.Errorf("connect supabase postgres: %w", err)
		}
		s.db = db
	}

	if s.db == nil && s.sdk == nil {
		return fmt.Errorf("either connection string/password or Supabase URL+key must be provided")
	}
	return nil
}

// Get returns the record for key, or (nil, nil) when none exists
func (s *SupabaseStore) Get(ctx context.Context, key string) (*domain.DispatchRecord, error) {
	if s.db != nil {
		return s.getDirect(ctx, key)
	}
	if s.sdk == nil {
		return nil, fmt.Errorf("supabase store not connected")
	}

	data, _, err := s.sdk.From(supabaseTable).
		Select("*", "", false).
		Eq("request_key", key).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("query dispatch record: %w", err)
	}

	var records []domain.DispatchRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode dispatch record: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// Put upserts the record for its key, last-write-wins
func (s *SupabaseStore) Put(ctx context.Context, record domain.DispatchRecord) error {
	if s.db != nil {
		return s.putDirect(ctx, record)
	}
	if s.sdk == nil {
		return fmt.Errorf("supabase store not connected")
	}

	_, _, err := s.sdk.From(supabaseTable).
		Insert(record, true, "request_key", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("upsert dispatch record: %w", err)
	}
	return nil
}

// Close closes the direct database connection when one is open
func (s *SupabaseStore) Close(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SupabaseStore) getDirect(ctx context.Context, key string) (*domain.DispatchRecord, error) {
	const query = `SELECT request_key, last_sent_at FROM dispatch_records WHERE request_key = $1`
	var record domain.DispatchRecord
	err := s.db.QueryRowContext(ctx, query, key).Scan(&record.RequestKey, &record.LastSentAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query dispatch record: %w", err)
	}
	return &record, nil
}

func (s *SupabaseStore) putDirect(ctx context.Context, record domain.DispatchRecord) error {
	const query = `INSERT INTO dispatch_records (request_key, last_sent_at)
		VALUES ($1, $2)
		ON CONFLICT (request_key) DO UPDATE SET last_sent_at = EXCLUDED.last_sent_at`
	if _, err := s.db.ExecContext(ctx, query, record.RequestKey, record.LastSentAt); err != nil {
		return fmt.Errorf("upsert dispatch record: %w", err)
	}
	return nil
}

// buildConnectionString constructs a Supabase Postgres connection string
// from the project URL and database password.
func (s *SupabaseStore) buildConnectionString() (string, error) {
	if s.cfg.SupabaseURL == "" {
		return "", fmt.Errorf("supabase URL is required when connection string is not provided")
	}

	// URL format: https://[project-ref].supabase.co
	parsedURL, err := url.Parse(s.cfg.SupabaseURL)
	if err != nil {
		return "", fmt.Errorf("parse supabase URL: %w", err)
	}

	parts := strings.Split(parsedURL.Host, ".")
	if len(parts) < 2 {
		return "", fmt.Errorf("invalid supabase URL format: expected [project-ref].supabase.co")
	}
	projectRef := parts[0]

	// statement_cache_capacity=0 disables the prepared statement cache,
	// which conflicts with Supabase's connection pooler
	encodedPassword := url.QueryEscape(s.cfg.Password)
	return fmt.Sprintf(
		"postgresql://postgres:%s@db.%s.supabase.co:5432/postgres?sslmode=require&statement_cache_capacity=0",
		encodedPassword, projectRef,
	), nil
}
