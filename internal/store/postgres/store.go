package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/imamik/planguard/internal/governance"
)

const pgUniqueViolation = "23505"

// Beginner starts transactions. *pgxpool.Pool and *pgx.Conn satisfy it.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store implements governance.Store on PostgreSQL.
type Store struct {
	pool Beginner
	log  logr.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(log logr.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// NewStore creates a Postgres-backed store.
func NewStore(pool Beginner, opts ...Option) *Store {
	s := &Store{pool: pool, log: logr.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureSchema creates the planguard schema and policies table if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, schemaSQL); err != nil {
			return fmt.Errorf("failed to apply policy schema: %w", err)
		}
		return nil
	})
}

func (s *Store) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Get implements governance.Store.
func (s *Store) Get(ctx context.Context, key governance.PolicyKey) (*governance.Policy, error) {
	var policy *governance.Policy
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		p, err := scanPolicy(tx.QueryRow(ctx, selectPolicySQL, key.ProviderKind.String(), key.Name))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: %s", governance.ErrPolicyNotFound, key)
			}
			return fmt.Errorf("failed to get policy %s: %w", key, err)
		}
		policy = p
		return nil
	})
	return policy, err
}

// List implements governance.Store.
func (s *Store) List(ctx context.Context, kind governance.ProviderKind) ([]governance.Policy, error) {
	var policies []governance.Policy
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, listPoliciesSQL, kind.String())
		if err != nil {
			return fmt.Errorf("failed to list policies: %w", err)
		}
		defer rows.Close()

		policies = make([]governance.Policy, 0)
		for rows.Next() {
			p, err := scanPolicy(rows)
			if err != nil {
				return fmt.Errorf("failed to scan policy: %w", err)
			}
			policies = append(policies, *p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	governance.SortPolicies(policies)
	return policies, nil
}

// Create implements governance.Store.
func (s *Store) Create(ctx context.Context, policy *governance.Policy) (*governance.Policy, error) {
	rules, err := encodeRules(policy.Rules)
	if err != nil {
		return nil, err
	}

	var created *governance.Policy
	err = s.inTx(ctx, func(tx pgx.Tx) error {
		p, err := scanPolicy(tx.QueryRow(ctx, insertPolicySQL,
			policy.Key.ProviderKind.String(),
			policy.Key.Name,
			policy.Description,
			policy.Summary,
			policy.ReadOnly,
			rules,
			uuid.New().String(),
		))
		if err != nil {
			if pgErrorCode(err) == pgUniqueViolation {
				return fmt.Errorf("%w: %s", governance.ErrDuplicatePolicyName, policy.Key)
			}
			return fmt.Errorf("failed to insert policy %s: %w", policy.Key, err)
		}
		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.V(1).Info("Inserted policy", "policy", policy.Key.String(), "resourceVersion", created.ResourceVersion)
	return created, nil
}

// Update implements governance.Store.
func (s *Store) Update(ctx context.Context, policy *governance.Policy) (*governance.Policy, error) {
	rules, err := encodeRules(policy.Rules)
	if err != nil {
		return nil, err
	}
	expected := parseVersion(policy.ResourceVersion)

	var updated *governance.Policy
	err = s.inTx(ctx, func(tx pgx.Tx) error {
		p, err := scanPolicy(tx.QueryRow(ctx, updatePolicySQL,
			policy.Key.ProviderKind.String(),
			policy.Key.Name,
			policy.Description,
			policy.Summary,
			rules,
			expected,
		))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return missingOrStale(ctx, tx, policy)
			}
			return fmt.Errorf("failed to update policy %s: %w", policy.Key, err)
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.V(1).Info("Updated policy", "policy", policy.Key.String(), "resourceVersion", updated.ResourceVersion)
	return updated, nil
}

// Delete implements governance.Store.
func (s *Store) Delete(ctx context.Context, policy *governance.Policy) error {
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, deletePolicySQL,
			policy.Key.ProviderKind.String(),
			policy.Key.Name,
			parseVersion(policy.ResourceVersion),
		)
		if err != nil {
			return fmt.Errorf("failed to delete policy %s: %w", policy.Key, err)
		}
		if tag.RowsAffected() == 0 {
			return missingOrStale(ctx, tx, policy)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.V(1).Info("Deleted policy", "policy", policy.Key.String())
	return nil
}

// StaleVersionError is the backend error wrapped by ErrConflict.
type StaleVersionError struct {
	Expected string
	Current  int64
}

func (e *StaleVersionError) Error() string {
	return fmt.Sprintf("resource_version %q is stale, current is %d", e.Expected, e.Current)
}

func missingOrStale(ctx context.Context, tx pgx.Tx, policy *governance.Policy) error {
	var current int64
	err := tx.QueryRow(ctx, currentVersionSQL, policy.Key.ProviderKind.String(), policy.Key.Name).Scan(&current)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("%w: %s", governance.ErrPolicyNotFound, policy.Key)
	case err != nil:
		return fmt.Errorf("failed to read resource version of %s: %w", policy.Key, err)
	}
	return governance.ConflictError(&StaleVersionError{Expected: policy.ResourceVersion, Current: current})
}

func scanPolicy(row pgx.Row) (*governance.Policy, error) {
	var (
		kind      string
		p         governance.Policy
		rules     []byte
		version   int64
		createdAt time.Time
	)
	if err := row.Scan(&kind, &p.Key.Name, &p.Description, &p.Summary, &p.ReadOnly, &rules, &version, &p.UID, &createdAt); err != nil {
		return nil, err
	}

	pk, err := governance.ParseProviderKind(kind)
	if err != nil {
		return nil, err
	}
	p.Key.ProviderKind = pk
	p.ResourceVersion = strconv.FormatInt(version, 10)
	p.CreatedAt = createdAt

	p.Rules = governance.RuleSet{}
	if len(rules) > 0 {
		if err := json.Unmarshal(rules, &p.Rules); err != nil {
			return nil, fmt.Errorf("failed to decode rules of %s: %w", p.Key, err)
		}
	}
	p.Rules.Canonicalize()
	return &p, nil
}

func encodeRules(rules governance.RuleSet) (string, error) {
	canonical := rules.Clone()
	canonical.Canonicalize()
	data, err := json.Marshal(canonical)
	if err != nil {
		return "", fmt.Errorf("failed to encode rules: %w", err)
	}
	return string(data), nil
}

// parseVersion returns -1 for tokens that are not counters so that they never
// match a stored row.
func parseVersion(rv string) int64 {
	v, err := strconv.ParseInt(rv, 10, 64)
	if err != nil {
		return -1
	}
	return v
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.TrimSpace(pgErr.Code)
	}
	return ""
}
