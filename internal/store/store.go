package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dework-labs/marketsync/internal/common"
	"github.com/dework-labs/marketsync/internal/logger"
	"github.com/russross/meddler"
)

// Store is the durable entity store backing both the sync scheduler and
// the cache rebuild engine. All mutation goes through single-row or
// small-batch transactional writes.
type Store struct {
	db  *sql.DB
	log *logger.Logger
}

// New creates a Store on top of an open database.
func New(db *sql.DB, log *logger.Logger) *Store {
	return &Store{
		db:  db,
		log: log.WithComponent(common.ComponentStore),
	}
}

// DB returns the underlying database connection for use by other components.
func (s *Store) DB() *sql.DB {
	return s.db
}

// EnsureState loads the persisted indexer state, creating it on first run.
// A persisted master address or network flag that differs from the given
// configuration returns ErrStateMismatch; the process must not start.
func (s *Store) EnsureState(ctx context.Context, masterAddress string, inMainnet bool) (*IndexerState, error) {
	state, err := s.State(ctx)
	if errors.Is(err, ErrNotFound) {
		state = &IndexerState{
			ID:            1,
			MasterAddress: masterAddress,
			InMainnet:     inMainnet,
		}

		const insertQuery = `
			INSERT INTO indexer_state (id, master_address, in_mainnet, last_seq_no)
			VALUES (1, ?, ?, 0)
		`
		if _, err := s.db.ExecContext(ctx, insertQuery, masterAddress, inMainnet); err != nil {
			return nil, fmt.Errorf("failed to initialize indexer state: %w", err)
		}

		s.log.Infof("indexer state initialized: master=%s, mainnet=%t", masterAddress, inMainnet)

		return state, nil
	}
	if err != nil {
		return nil, err
	}

	if state.MasterAddress != masterAddress {
		return nil, fmt.Errorf("%w: persisted master address %s, configured %s (reset the database to change it)",
			ErrStateMismatch, state.MasterAddress, masterAddress)
	}
	if state.InMainnet != inMainnet {
		return nil, fmt.Errorf("%w: persisted in_mainnet=%t, configured %t (reset the database to change it)",
			ErrStateMismatch, state.InMainnet, inMainnet)
	}

	return state, nil
}

// State returns the persisted indexer state.
func (s *Store) State(ctx context.Context) (*IndexerState, error) {
	var state IndexerState
	err := meddler.QueryRow(s.db, &state, `SELECT * FROM indexer_state WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get indexer state: %w", err)
	}

	return &state, nil
}

// SetLastSeqNo records the latest observed chain sequence number.
func (s *Store) SetLastSeqNo(ctx context.Context, seqNo uint64) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE indexer_state SET last_seq_no = ? WHERE id = 1`, seqNo); err != nil {
		return fmt.Errorf("failed to set last seq no: %w", err)
	}

	return nil
}

// SaveAdmin inserts or updates an admin row. The update only applies when
// it does not regress last_sync, so stale refreshes persist nothing.
func (s *Store) SaveAdmin(ctx context.Context, a *Admin) error {
	const query = `
		INSERT INTO admins (idx, address, status, last_sync)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(idx) DO UPDATE SET
			address = excluded.address,
			status = excluded.status,
			last_sync = excluded.last_sync
		WHERE excluded.last_sync >= admins.last_sync
	`
	if _, err := s.db.ExecContext(ctx, query,
		a.Index, a.Address, a.Status, a.LastSync.Unix()); err != nil {
		return fmt.Errorf("failed to save admin %d: %w", a.Index, err)
	}

	return nil
}

// SaveUser inserts or updates a user row without regressing last_sync.
func (s *Store) SaveUser(ctx context.Context, u *User) error {
	const query = `
		INSERT INTO users (idx, address, status, language, name, last_sync)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(idx) DO UPDATE SET
			address = excluded.address,
			status = excluded.status,
			language = excluded.language,
			name = excluded.name,
			last_sync = excluded.last_sync
		WHERE excluded.last_sync >= users.last_sync
	`
	if _, err := s.db.ExecContext(ctx, query,
		u.Index, u.Address, u.Status, u.Language, u.Name, u.LastSync.Unix()); err != nil {
		return fmt.Errorf("failed to save user %d: %w", u.Index, err)
	}

	return nil
}

// SaveOrder inserts or updates an order row without regressing last_sync.
func (s *Store) SaveOrder(ctx context.Context, o *Order) error {
	const query = `
		INSERT INTO orders (idx, address, status, category, language, price,
			customer_address, freelancer_address,
			name, name_hash, description, description_hash,
			technical_task, technical_task_hash, last_sync)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(idx) DO UPDATE SET
			address = excluded.address,
			status = excluded.status,
			category = excluded.category,
			language = excluded.language,
			price = excluded.price,
			customer_address = excluded.customer_address,
			freelancer_address = excluded.freelancer_address,
			name = excluded.name,
			name_hash = excluded.name_hash,
			description = excluded.description,
			description_hash = excluded.description_hash,
			technical_task = excluded.technical_task,
			technical_task_hash = excluded.technical_task_hash,
			last_sync = excluded.last_sync
		WHERE excluded.last_sync >= orders.last_sync
	`
	if _, err := s.db.ExecContext(ctx, query,
		o.Index, o.Address, o.Status, o.Category, o.Language, o.Price,
		o.CustomerAddress, o.FreelancerAddress,
		o.Name, o.NameHash, o.Description, o.DescriptionHash,
		o.TechnicalTask, o.TechnicalTaskHash, o.LastSync.Unix()); err != nil {
		return fmt.Errorf("failed to save order %d: %w", o.Index, err)
	}

	return nil
}

// Admin returns the admin with the given index, or ErrNotFound.
func (s *Store) Admin(ctx context.Context, index uint64) (*Admin, error) {
	var a Admin
	err := meddler.QueryRow(s.db, &a, `SELECT * FROM admins WHERE idx = ?`, index)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin %d: %w", index, err)
	}

	return &a, nil
}

// User returns the user with the given index, or ErrNotFound.
func (s *Store) User(ctx context.Context, index uint64) (*User, error) {
	var u User
	err := meddler.QueryRow(s.db, &u, `SELECT * FROM users WHERE idx = ?`, index)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", index, err)
	}

	return &u, nil
}

// Order returns the order with the given index, or ErrNotFound.
func (s *Store) Order(ctx context.Context, index uint64) (*Order, error) {
	var o Order
	err := meddler.QueryRow(s.db, &o, `SELECT * FROM orders WHERE idx = ?`, index)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order %d: %w", index, err)
	}

	return &o, nil
}

// Admins returns all admin rows ordered by index.
func (s *Store) Admins(ctx context.Context) ([]*Admin, error) {
	var admins []*Admin
	if err := meddler.QueryAll(s.db, &admins, `SELECT * FROM admins ORDER BY idx ASC`); err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}

	return admins, nil
}

// Users returns all user rows ordered by index.
func (s *Store) Users(ctx context.Context) ([]*User, error) {
	var users []*User
	if err := meddler.QueryAll(s.db, &users, `SELECT * FROM users ORDER BY idx ASC`); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// Orders returns all order rows ordered by index.
func (s *Store) Orders(ctx context.Context) ([]*Order, error) {
	var orders []*Order
	if err := meddler.QueryAll(s.db, &orders, `SELECT * FROM orders ORDER BY idx ASC`); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, nil
}

// MaxIndex returns the highest stored index for the entity type.
// The second return value is false when no rows exist.
func (s *Store) MaxIndex(ctx context.Context, entityType EntityType) (uint64, bool, error) {
	table, err := entityTable(entityType)
	if err != nil {
		return 0, false, err
	}

	var max sql.NullInt64
	if err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT MAX(idx) FROM %s`, table)).Scan(&max); err != nil {
		return 0, false, fmt.Errorf("failed to get max %s index: %w", entityType, err)
	}

	if !max.Valid {
		return 0, false, nil
	}

	return uint64(max.Int64), true, nil
}

// Indices returns all stored indices for the entity type, ascending.
func (s *Store) Indices(ctx context.Context, entityType EntityType) ([]uint64, error) {
	table, err := entityTable(entityType)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT idx FROM %s ORDER BY idx ASC`, table))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s indices: %w", entityType, err)
	}
	defer rows.Close()

	var indices []uint64
	for rows.Next() {
		var idx uint64
		if err := rows.Scan(&idx); err != nil {
			return nil, fmt.Errorf("failed to scan %s index: %w", entityType, err)
		}
		indices = append(indices, idx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s indices: %w", entityType, err)
	}

	return indices, nil
}

// entityTable maps an entity type to its table name.
func entityTable(entityType EntityType) (string, error) {
	switch entityType {
	case EntityTypeAdmin:
		return "admins", nil
	case EntityTypeUser:
		return "users", nil
	case EntityTypeOrder:
		return "orders", nil
	default:
		return "", fmt.Errorf("unknown entity type %q", entityType)
	}
}
