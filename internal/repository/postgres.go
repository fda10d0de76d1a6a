package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id BIGINT PRIMARY KEY,
	username TEXT NOT NULL,
	avatar TEXT NOT NULL DEFAULT '',
	is_admin BOOLEAN NOT NULL DEFAULT FALSE,
	premium INT NOT NULL DEFAULT 0,
	balance DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (balance >= 0)
);

CREATE TABLE IF NOT EXISTS lots (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	image_url TEXT NOT NULL DEFAULT '',
	starting_price DOUBLE PRECISION NOT NULL,
	current_price DOUBLE PRECISION,
	min_step DOUBLE PRECISION NOT NULL,
	duration_minutes INT NOT NULL,
	vip_only BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	scheduled_start TIMESTAMPTZ,
	started_at TIMESTAMPTZ,
	ends_at TIMESTAMPTZ,
	status TEXT NOT NULL DEFAULT 'pending'
		CHECK (status IN ('pending', 'active', 'ended', 'cancelled')),
	winner_id BIGINT REFERENCES users(id),
	creator_id BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS bids (
	id BIGSERIAL PRIMARY KEY,
	lot_id BIGINT NOT NULL REFERENCES lots(id) ON DELETE CASCADE,
	user_id BIGINT NOT NULL REFERENCES users(id),
	amount DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_lots_status ON lots(status);
CREATE INDEX IF NOT EXISTS idx_lots_ends_at ON lots(ends_at);
CREATE INDEX IF NOT EXISTS idx_bids_lot_id ON bids(lot_id);
`

const lotColumns = `id, title, description, image_url, starting_price, current_price,
	min_step, duration_minutes, vip_only, created_at, scheduled_start,
	started_at, ends_at, status, winner_id, creator_id`

// PostgresStore is the pgx-backed implementation of AuctionStore.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects a pool to the given database URL and ensures
// the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// UpsertUser creates or replaces the stored record for a hub user.
func (s *PostgresStore) UpsertUser(ctx context.Context, user model.User) (model.User, error) {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, username, avatar, is_admin, premium, balance)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			avatar = EXCLUDED.avatar,
			is_admin = EXCLUDED.is_admin,
			premium = EXCLUDED.premium,
			balance = EXCLUDED.balance`,
		user.ID, user.Username, user.Avatar, user.IsAdmin, user.Premium, user.Balance)
	if err != nil {
		return model.User{}, fmt.Errorf("upsert user %d: %w", user.ID, err)
	}
	return user, nil
}

// GetUser returns the stored record for a user.
func (s *PostgresStore) GetUser(ctx context.Context, userID int64) (model.User, error) {
	var user model.User
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, avatar, is_admin, premium, balance
		FROM users WHERE id = $1`, userID).
		Scan(&user.ID, &user.Username, &user.Avatar, &user.IsAdmin, &user.Premium, &user.Balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, fmt.Errorf("get user %d: %w", userID, auctionerrors.ErrUserNotFound)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("get user %d: %w", userID, err)
	}
	return user, nil
}

// CreateLot stores a new lot and assigns its id.
func (s *PostgresStore) CreateLot(ctx context.Context, lot model.Lot) (model.Lot, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO lots (title, description, image_url, starting_price, current_price,
			min_step, duration_minutes, vip_only, created_at, scheduled_start,
			started_at, ends_at, status, winner_id, creator_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`,
		lot.Title, lot.Description, lot.ImageURL, lot.StartingPrice, lot.CurrentPrice,
		lot.MinStep, lot.DurationMinutes, lot.VIPOnly, lot.CreatedAt, lot.ScheduledStart,
		lot.StartedAt, lot.EndsAt, lot.Status, lot.WinnerID, lot.CreatorID).
		Scan(&lot.ID)
	if err != nil {
		return model.Lot{}, fmt.Errorf("create lot: %w", err)
	}
	return lot, nil
}

// GetLot returns a single lot by id.
func (s *PostgresStore) GetLot(ctx context.Context, lotID int64) (model.Lot, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+lotColumns+` FROM lots WHERE id = $1`, lotID)
	lot, err := scanLot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Lot{}, fmt.Errorf("get lot %d: %w", lotID, auctionerrors.ErrLotNotFound)
	}
	if err != nil {
		return model.Lot{}, fmt.Errorf("get lot %d: %w", lotID, err)
	}
	return lot, nil
}

// ListLots returns all lots, newest first.
func (s *PostgresStore) ListLots(ctx context.Context) ([]model.Lot, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+lotColumns+` FROM lots ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()
	return collectLots(rows)
}

// ListLotsByStatus returns all lots in the given lifecycle state, newest first.
func (s *PostgresStore) ListLotsByStatus(ctx context.Context, status model.LotStatus) ([]model.Lot, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+lotColumns+` FROM lots WHERE status = $1 ORDER BY created_at DESC, id DESC`, status)
	if err != nil {
		return nil, fmt.Errorf("list lots by status %s: %w", status, err)
	}
	defer rows.Close()
	return collectLots(rows)
}

// UpdateLot replaces the stored row for an existing lot.
func (s *PostgresStore) UpdateLot(ctx context.Context, lot model.Lot) (model.Lot, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE lots SET title = $2, description = $3, image_url = $4,
			starting_price = $5, current_price = $6, min_step = $7,
			duration_minutes = $8, vip_only = $9, scheduled_start = $10,
			started_at = $11, ends_at = $12, status = $13, winner_id = $14
		WHERE id = $1`,
		lot.ID, lot.Title, lot.Description, lot.ImageURL,
		lot.StartingPrice, lot.CurrentPrice, lot.MinStep,
		lot.DurationMinutes, lot.VIPOnly, lot.ScheduledStart,
		lot.StartedAt, lot.EndsAt, lot.Status, lot.WinnerID)
	if err != nil {
		return model.Lot{}, fmt.Errorf("update lot %d: %w", lot.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return model.Lot{}, fmt.Errorf("update lot %d: %w", lot.ID, auctionerrors.ErrLotNotFound)
	}
	return lot, nil
}

// DeleteLot removes a lot; bids cascade at the schema level.
func (s *PostgresStore) DeleteLot(ctx context.Context, lotID int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM lots WHERE id = $1`, lotID)
	if err != nil {
		return fmt.Errorf("delete lot %d: %w", lotID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete lot %d: %w", lotID, auctionerrors.ErrLotNotFound)
	}
	return nil
}

// AdmitBid records a bid, raises the lot price and debits the bidder in
// one transaction.
func (s *PostgresStore) AdmitBid(ctx context.Context, bid model.Bid) (model.Bid, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return model.Bid{}, fmt.Errorf("admit bid: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE users SET balance = balance - $2
		WHERE id = $1 AND balance >= $2`, bid.UserID, bid.Amount)
	if err != nil {
		return model.Bid{}, fmt.Errorf("admit bid: debit user %d: %w", bid.UserID, err)
	}
	if tag.RowsAffected() == 0 {
		return model.Bid{}, fmt.Errorf("admit bid by user %d: %w", bid.UserID, auctionerrors.ErrInsufficientFunds)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO bids (lot_id, user_id, amount, created_at)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		bid.LotID, bid.UserID, bid.Amount, bid.CreatedAt).
		Scan(&bid.ID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("admit bid for lot %d: %w", bid.LotID, err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE lots SET current_price = $2 WHERE id = $1`, bid.LotID, bid.Amount); err != nil {
		return model.Bid{}, fmt.Errorf("admit bid: update lot %d price: %w", bid.LotID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Bid{}, fmt.Errorf("admit bid: commit: %w", err)
	}
	return bid, nil
}

// GetBid returns a single bid by id.
func (s *PostgresStore) GetBid(ctx context.Context, bidID int64) (model.Bid, error) {
	var bid model.Bid
	err := s.pool.QueryRow(ctx, `
		SELECT id, lot_id, user_id, amount, created_at
		FROM bids WHERE id = $1`, bidID).
		Scan(&bid.ID, &bid.LotID, &bid.UserID, &bid.Amount, &bid.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Bid{}, fmt.Errorf("get bid %d: %w", bidID, auctionerrors.ErrBidNotFound)
	}
	if err != nil {
		return model.Bid{}, fmt.Errorf("get bid %d: %w", bidID, err)
	}
	return bid, nil
}

// ListBidsByLot returns all bids for a lot, newest first.
func (s *PostgresStore) ListBidsByLot(ctx context.Context, lotID int64) ([]model.Bid, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, lot_id, user_id, amount, created_at
		FROM bids WHERE lot_id = $1 ORDER BY created_at DESC, id DESC`, lotID)
	if err != nil {
		return nil, fmt.Errorf("list bids for lot %d: %w", lotID, err)
	}
	defer rows.Close()

	var bids []model.Bid
	for rows.Next() {
		var bid model.Bid
		if err := rows.Scan(&bid.ID, &bid.LotID, &bid.UserID, &bid.Amount, &bid.CreatedAt); err != nil {
			return nil, fmt.Errorf("list bids for lot %d: %w", lotID, err)
		}
		bids = append(bids, bid)
	}
	return bids, rows.Err()
}

// HighestBid returns the leading bid for a lot: highest amount, ties
// broken by earliest admission time.
func (s *PostgresStore) HighestBid(ctx context.Context, lotID int64) (model.Bid, error) {
	var bid model.Bid
	err := s.pool.QueryRow(ctx, `
		SELECT id, lot_id, user_id, amount, created_at
		FROM bids WHERE lot_id = $1
		ORDER BY amount DESC, created_at ASC LIMIT 1`, lotID).
		Scan(&bid.ID, &bid.LotID, &bid.UserID, &bid.Amount, &bid.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Bid{}, fmt.Errorf("highest bid for lot %d: %w", lotID, auctionerrors.ErrNoBids)
	}
	if err != nil {
		return model.Bid{}, fmt.Errorf("highest bid for lot %d: %w", lotID, err)
	}
	return bid, nil
}

// DeleteBid removes a single bid.
func (s *PostgresStore) DeleteBid(ctx context.Context, bidID int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM bids WHERE id = $1`, bidID)
	if err != nil {
		return fmt.Errorf("delete bid %d: %w", bidID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete bid %d: %w", bidID, auctionerrors.ErrBidNotFound)
	}
	return nil
}

func scanLot(row pgx.Row) (model.Lot, error) {
	var lot model.Lot
	err := row.Scan(&lot.ID, &lot.Title, &lot.Description, &lot.ImageURL,
		&lot.StartingPrice, &lot.CurrentPrice, &lot.MinStep, &lot.DurationMinutes,
		&lot.VIPOnly, &lot.CreatedAt, &lot.ScheduledStart, &lot.StartedAt,
		&lot.EndsAt, &lot.Status, &lot.WinnerID, &lot.CreatorID)
	return lot, err
}

func collectLots(rows pgx.Rows) ([]model.Lot, error) {
	var lots []model.Lot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		lots = append(lots, lot)
	}
	return lots, rows.Err()
}
