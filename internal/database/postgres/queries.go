package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/osse101/roundpool/internal/domain"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries holds every statement the ledger store runs
type Queries struct {
	db DBTX
}

// New creates Queries over a pool or transaction
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns Queries bound to tx
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

const governanceColumns = `deployer, treasury, admins, fee_rate`

const getGovernance = `SELECT ` + governanceColumns + ` FROM governance WHERE id = 1`

const getGovernanceForUpdate = getGovernance + ` FOR UPDATE`

func (q *Queries) getGovernance(ctx context.Context, query string) (*domain.Governance, error) {
	var (
		deployer, treasury []byte
		admins             [][]byte
		feeRate            int64
	)
	err := q.db.QueryRow(ctx, query).Scan(&deployer, &treasury, &admins, &feeRate)
	if err != nil {
		return nil, err
	}
	return &domain.Governance{
		Deployer: identityFromBytes(deployer),
		Treasury: identityFromBytes(treasury),
		Admins:   identitiesFromBytes(admins),
		FeeRate:  uint64(feeRate),
	}, nil
}

const upsertGovernance = `
INSERT INTO governance (id, deployer, treasury, admins, fee_rate)
VALUES (1, $1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE
SET deployer = EXCLUDED.deployer, treasury = EXCLUDED.treasury,
    admins = EXCLUDED.admins, fee_rate = EXCLUDED.fee_rate`

func (q *Queries) upsertGovernance(ctx context.Context, g *domain.Governance) error {
	_, err := q.db.Exec(ctx, upsertGovernance,
		g.Deployer.Bytes(), g.Treasury.Bytes(), identitiesToBytes(g.Admins), int64(g.FeeRate))
	return err
}

const insertGovernanceIfAbsent = `
INSERT INTO governance (id, deployer, treasury, admins, fee_rate)
VALUES (1, $1, $2, $3, $4)
ON CONFLICT (id) DO NOTHING`

func (q *Queries) insertGovernanceIfAbsent(ctx context.Context, g *domain.Governance) error {
	_, err := q.db.Exec(ctx, insertGovernanceIfAbsent,
		g.Deployer.Bytes(), g.Treasury.Bytes(), identitiesToBytes(g.Admins), int64(g.FeeRate))
	return err
}

const nextID = `
UPDATE ledger_counters SET next_id = next_id + 1
WHERE name = $1
RETURNING next_id - 1`

func (q *Queries) nextID(ctx context.Context, counter string) (uint64, error) {
	var id int64
	if err := q.db.QueryRow(ctx, nextID, counter).Scan(&id); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

const marketColumns = `id, asset, max_bet::text, created_at, round_length, current_round::text, paused, state`

const getMarket = `SELECT ` + marketColumns + ` FROM markets WHERE id = $1`

const getMarketForUpdate = getMarket + ` FOR UPDATE`

const listMarkets = `SELECT ` + marketColumns + ` FROM markets ORDER BY id`

func scanMarket(row pgx.Row) (*domain.Market, error) {
	var (
		m                    domain.Market
		id                   int64
		maxBet, currentRound string
		state                []byte
	)
	if err := row.Scan(&id, &m.Asset, &maxBet, &m.CreatedAt, &m.RoundLength, &currentRound, &m.Paused, &state); err != nil {
		return nil, err
	}

	var err error
	m.ID = uint64(id)
	if m.MaxBet, err = parseU64(maxBet); err != nil {
		return nil, err
	}
	if m.CurrentRound, err = parseU64(currentRound); err != nil {
		return nil, err
	}
	if err := decodeMarketState(state, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (q *Queries) getMarket(ctx context.Context, query string, id uint64) (*domain.Market, error) {
	return scanMarket(q.db.QueryRow(ctx, query, int64(id)))
}

func (q *Queries) listMarkets(ctx context.Context) ([]domain.Market, error) {
	rows, err := q.db.Query(ctx, listMarkets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Market
	for rows.Next() {
		m, err := scanMarket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

const insertMarket = `
INSERT INTO markets (id, asset, max_bet, created_at, round_length, current_round, paused, state)
VALUES ($1, $2, $3::text::numeric, $4, $5, $6::text::numeric, $7, $8)`

func (q *Queries) insertMarket(ctx context.Context, m *domain.Market) error {
	state, err := encodeMarketState(m)
	if err != nil {
		return err
	}
	_, err = q.db.Exec(ctx, insertMarket,
		int64(m.ID), m.Asset, u64(m.MaxBet), m.CreatedAt, m.RoundLength, u64(m.CurrentRound), m.Paused, state)
	return err
}

const updateMarket = `
UPDATE markets
SET asset = $2, max_bet = $3::text::numeric, round_length = $4,
    current_round = $5::text::numeric, paused = $6, state = $7
WHERE id = $1`

func (q *Queries) updateMarket(ctx context.Context, m *domain.Market) error {
	state, err := encodeMarketState(m)
	if err != nil {
		return err
	}
	tag, err := q.db.Exec(ctx, updateMarket,
		int64(m.ID), m.Asset, u64(m.MaxBet), m.RoundLength, u64(m.CurrentRound), m.Paused, state)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMarketNotFound
	}
	return nil
}

const positionColumns = `id, market_id, outcome_id::text, round_id::text, amount::text, holder, placed_at, open`

const getPosition = `SELECT ` + positionColumns + ` FROM positions WHERE id = $1`

const getPositionForUpdate = getPosition + ` FOR UPDATE`

const listPositionsByHolder = `SELECT ` + positionColumns + ` FROM positions WHERE holder = $1 ORDER BY id`

func scanPosition(row pgx.Row) (*domain.Position, error) {
	var (
		p                       domain.Position
		id, marketID            int64
		outcomeID, roundID, amt string
		holder                  []byte
	)
	if err := row.Scan(&id, &marketID, &outcomeID, &roundID, &amt, &holder, &p.PlacedAt, &p.Open); err != nil {
		return nil, err
	}

	var err error
	p.ID = uint64(id)
	p.MarketID = uint64(marketID)
	p.Holder = identityFromBytes(holder)
	if p.OutcomeID, err = parseU64(outcomeID); err != nil {
		return nil, err
	}
	if p.RoundID, err = parseU64(roundID); err != nil {
		return nil, err
	}
	if p.Amount, err = parseU64(amt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (q *Queries) getPosition(ctx context.Context, query string, id uint64) (*domain.Position, error) {
	return scanPosition(q.db.QueryRow(ctx, query, int64(id)))
}

func (q *Queries) listPositionsByHolder(ctx context.Context, holder domain.Identity) ([]domain.Position, error) {
	rows, err := q.db.Query(ctx, listPositionsByHolder, holder.Bytes())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Position{}
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

const insertPosition = `
INSERT INTO positions (id, market_id, outcome_id, round_id, amount, holder, placed_at, open)
VALUES ($1, $2, $3::text::numeric, $4::text::numeric, $5::text::numeric, $6, $7, $8)`

func (q *Queries) insertPosition(ctx context.Context, p *domain.Position) error {
	_, err := q.db.Exec(ctx, insertPosition,
		int64(p.ID), int64(p.MarketID), u64(p.OutcomeID), u64(p.RoundID), u64(p.Amount), p.Holder.Bytes(), p.PlacedAt, p.Open)
	return err
}

const updatePosition = `UPDATE positions SET open = $2 WHERE id = $1`

func (q *Queries) updatePosition(ctx context.Context, p *domain.Position) error {
	tag, err := q.db.Exec(ctx, updatePosition, int64(p.ID), p.Open)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPositionNotFound
	}
	return nil
}

// notFound maps pgx.ErrNoRows to a nil record
func notFound[T any](v *T, err error) (*T, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == PgErrorCodeUniqueViolation
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
