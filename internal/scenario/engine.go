package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/osse101/roundpool/internal/concurrency"
	"github.com/osse101/roundpool/internal/custody"
	"github.com/osse101/roundpool/internal/database/memory"
	"github.com/osse101/roundpool/internal/domain"
	"github.com/osse101/roundpool/internal/event"
	"github.com/osse101/roundpool/internal/logger"
	"github.com/osse101/roundpool/internal/repository"
	"github.com/osse101/roundpool/internal/wager"
)

// DefaultStart is the simulated clock origin when a scenario omits start
var DefaultStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// Store is the Entity Store one run writes to
type Store struct {
	Ledger repository.Ledger
	// Location names where the run's records live; empty for memory
	Location string
	Close    func()
}

// StoreFactory opens an empty store for runID, bootstrapped with gov
type StoreFactory func(ctx context.Context, runID string, gov *domain.Governance) (*Store, error)

// MemoryStore is the default StoreFactory
func MemoryStore(_ context.Context, _ string, gov *domain.Governance) (*Store, error) {
	return &Store{Ledger: memory.NewLedger(gov)}, nil
}

// Engine executes scenarios, each against a fresh store
type Engine struct {
	bus    event.Bus
	locker concurrency.Locker
	stores StoreFactory
}

// Option configures the engine
type Option func(*Engine)

// WithEventBus publishes ledger events of every run to bus
func WithEventBus(bus event.Bus) Option {
	return func(e *Engine) {
		e.bus = bus
	}
}

// WithLocker serializes ledger operations through locker instead of a
// per-run in-process lock manager. Keys are namespaced by run id.
func WithLocker(locker concurrency.Locker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithStoreFactory opens each run's store through f instead of MemoryStore
func WithStoreFactory(f StoreFactory) Option {
	return func(e *Engine) {
		e.stores = f
	}
}

// NewRunID returns a unique id for one execution of scenarioID
func NewRunID(scenarioID string) string {
	return scenarioID + "-" + uuid.NewString()[:8]
}

// NewEngine creates a new scenario execution engine
func NewEngine(opts ...Option) *Engine {
	e := &Engine{stores: MemoryStore}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// session is the state of one scenario run
type session struct {
	store    *Store
	svc      wager.Service
	vault    *custody.MemoryVault
	clock    *clockwork.FakeClock
	accounts map[string]domain.Identity
	flows    *Flows
}

// Run executes every step of sc in order, stopping at the first failed step,
// then checks pool conservation
func (e *Engine) Run(ctx context.Context, sc *Scenario) (*ExecutionResult, error) {
	log := logger.FromContext(ctx)
	result := NewExecutionResult(sc.ID, sc.Name)
	result.RunID = NewRunID(sc.ID)

	s, err := e.newSession(ctx, sc, result.RunID)
	if err != nil {
		result.SetError(err)
		result.Complete()
		return result, err
	}
	defer s.close()
	result.Store = s.store.Location

	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			result.SetError(err)
			result.Complete()
			return result, err
		}

		stepResult := s.executeStep(ctx, step, i)
		result.AddStepResult(*stepResult)
		if !stepResult.Success {
			log.Warn("Scenario step failed", "scenario", sc.ID, "step", step.Label(), "error", stepResult.Error)
			break
		}
	}

	pools, err := CheckConservation(ctx, s.svc, s.flows)
	result.Pools = pools
	if err != nil {
		result.SetError(err)
	}
	result.Complete()

	log.Info("Scenario finished", "scenario", sc.ID, "success", result.Success, "steps", len(result.Steps))
	return result, nil
}

// RunAll executes scenarios concurrently, at most parallel at a time.
// Results keep the input order.
func (e *Engine) RunAll(ctx context.Context, scenarios []*Scenario, parallel int) ([]*ExecutionResult, error) {
	results := make([]*ExecutionResult, len(scenarios))
	g, gctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}
	for i, sc := range scenarios {
		g.Go(func() error {
			res, err := e.Run(gctx, sc)
			results[i] = res
			return err
		})
	}
	return results, g.Wait()
}

func (e *Engine) newSession(ctx context.Context, sc *Scenario, runID string) (*session, error) {
	s := &session{
		vault:    custody.NewMemoryVault(),
		accounts: make(map[string]domain.Identity),
		flows:    NewFlows(),
	}
	for name, hex := range sc.Accounts {
		s.accounts[name] = common.HexToAddress(hex)
	}

	deployer, err := s.identity(sc.Deployer)
	if err != nil {
		return nil, fmt.Errorf("deployer: %w", err)
	}
	treasury := deployer
	if sc.Treasury != "" {
		if treasury, err = s.identity(sc.Treasury); err != nil {
			return nil, fmt.Errorf("treasury: %w", err)
		}
	}
	s.accounts[AccountDeployer] = deployer
	s.accounts[AccountTreasury] = treasury

	for _, fund := range sc.Funding {
		id, err := s.identity(fund.Account)
		if err != nil {
			return nil, fmt.Errorf("funding: %w", err)
		}
		if err := s.vault.Mint(id, fund.Asset, fund.Amount); err != nil {
			return nil, fmt.Errorf("funding %s: %w", fund.Account, err)
		}
	}

	start := sc.Start
	if start.IsZero() {
		start = DefaultStart
	}
	s.clock = clockwork.NewFakeClockAt(start)

	bus := e.bus
	if bus == nil {
		bus = event.NewMemoryBus()
	}
	locker := e.locker
	if locker == nil {
		locker = concurrency.NewLockManager()
	}
	store, err := e.stores(ctx, runID, domain.NewGovernance(deployer, treasury))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	s.store = store
	s.svc = wager.NewService(store.Ledger, s.vault, locker, bus, s.clock, wager.WithLockNamespace(runID))
	return s, nil
}

func (s *session) close() {
	if s.store.Close != nil {
		s.store.Close()
	}
}

// identity resolves a declared account name or a literal hex address
func (s *session) identity(name string) (domain.Identity, error) {
	if id, ok := s.accounts[name]; ok {
		return id, nil
	}
	if common.IsHexAddress(name) {
		return common.HexToAddress(name), nil
	}
	return domain.ZeroIdentity, fmt.Errorf("%w: %q", ErrUnknownAccount, name)
}

func (s *session) executeStep(ctx context.Context, step Step, index int) *StepResult {
	stepResult := NewStepResult(step.Label(), index, step.Action)

	output, err := s.dispatch(ctx, step)
	for k, v := range output {
		stepResult.Output[k] = v
	}

	wantKind, expectsError := step.Expect[ExpectError]
	switch {
	case err != nil && !expectsError:
		stepResult.SetError(&StepError{StepName: step.Label(), StepIndex: index, Action: step.Action, Err: err})
		return stepResult
	case expectsError:
		kind := domain.KindOf(err)
		stepResult.Output[ExpectError] = kind
		if err != nil {
			stepResult.Error = err.Error()
		}
		stepResult.AddAssertionResult(AssertionResult{
			Key:      ExpectError,
			Expected: wantKind,
			Actual:   kind,
			Passed:   sameValue(wantKind, kind),
		})
	}

	for key, want := range step.Expect {
		if key == ExpectError {
			continue
		}
		actual, found := stepResult.Output[key]
		stepResult.AddAssertionResult(AssertionResult{
			Key:      key,
			Expected: want,
			Actual:   actual,
			Passed:   found && sameValue(want, actual),
		})
	}
	return stepResult
}

func (s *session) dispatch(ctx context.Context, step Step) (map[string]any, error) {
	p := step.Params
	if p == nil {
		p = map[string]any{}
	}

	switch step.Action {
	case ActionAdvance:
		secs, err := paramUint(p, "seconds")
		if err != nil {
			return nil, err
		}
		s.clock.Advance(time.Duration(secs) * time.Second)
		return map[string]any{"now": s.clock.Now().Unix()}, nil
	case ActionCheckBalance:
		return s.checkBalance(ctx, p)
	case ActionCheckPool:
		marketID, err := paramUint(p, "market")
		if err != nil {
			return nil, err
		}
		balance, err := s.svc.PoolBalance(ctx, marketID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"balance": balance}, nil
	case ActionComputePayout:
		positionID, err := paramUint(p, "position")
		if err != nil {
			return nil, err
		}
		payout, err := s.svc.ComputePayout(ctx, positionID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"payout": payout}, nil
	}

	caller, err := s.identity(step.Caller)
	if err != nil {
		return nil, err
	}

	switch step.Action {
	case ActionCreateMarket:
		return s.createMarket(ctx, caller, p)
	case ActionPlaceBet:
		return s.placeBet(ctx, caller, p)
	case ActionResolve:
		return s.resolve(ctx, caller, p)
	case ActionClaim:
		return s.claim(ctx, caller, p)
	case ActionEmergencyWithdraw, ActionEmergencyDeposit:
		return s.emergency(ctx, caller, step.Action, p)
	case ActionSetFeeRate:
		rate, err := paramUint(p, "rate")
		if err != nil {
			return nil, err
		}
		return nil, s.svc.SetFeeRate(ctx, caller, rate)
	case ActionAddAdmin, ActionRemoveAdmin, ActionSetTreasury:
		return nil, s.governanceMember(ctx, caller, step.Action, p)
	case ActionSetPaused, ActionSetMaxBet, ActionSetRoundLength, ActionSetCurrentRound,
		ActionSetRoundWeight, ActionSetRoundWeights:
		return nil, s.marketSetter(ctx, caller, step.Action, p)
	}
	return nil, fmt.Errorf("%w: %s", ErrInvalidAction, step.Action)
}

func (s *session) checkBalance(ctx context.Context, p map[string]any) (map[string]any, error) {
	name, err := paramString(p, "account")
	if err != nil {
		return nil, err
	}
	id, err := s.identity(name)
	if err != nil {
		return nil, err
	}
	asset, err := paramString(p, "asset")
	if err != nil {
		return nil, err
	}
	balance, err := s.vault.Balance(ctx, id, asset)
	if err != nil {
		return nil, err
	}
	return map[string]any{"balance": balance}, nil
}

func (s *session) createMarket(ctx context.Context, caller domain.Identity, p map[string]any) (map[string]any, error) {
	asset, err := paramString(p, "asset")
	if err != nil {
		return nil, err
	}
	maxBet, err := paramUint(p, "max_bet")
	if err != nil {
		return nil, err
	}
	length, err := paramUintOr(p, "round_length", 0)
	if err != nil {
		return nil, err
	}
	market, err := s.svc.CreateMarket(ctx, caller, wager.CreateMarketRequest{
		Asset:       asset,
		MaxBet:      maxBet,
		RoundLength: int64(length),
	})
	if err != nil {
		return nil, err
	}
	s.flows.Track(market.ID)
	return map[string]any{"market_id": market.ID, "round_length": market.RoundLength}, nil
}

func (s *session) placeBet(ctx context.Context, caller domain.Identity, p map[string]any) (map[string]any, error) {
	var req wager.PlaceBetRequest
	var err error
	if req.MarketID, err = paramUint(p, "market"); err != nil {
		return nil, err
	}
	if req.RoundID, err = paramUintOr(p, "round", 0); err != nil {
		return nil, err
	}
	if req.OutcomeID, err = paramUint(p, "outcome"); err != nil {
		return nil, err
	}
	if req.Amount, err = paramUint(p, "amount"); err != nil {
		return nil, err
	}
	position, err := s.svc.PlaceBet(ctx, caller, req)
	if err != nil {
		return nil, err
	}
	s.flows.In(req.MarketID, req.Amount)
	return map[string]any{"position_id": position.ID}, nil
}

func (s *session) resolve(ctx context.Context, caller domain.Identity, p map[string]any) (map[string]any, error) {
	marketID, err := paramUint(p, "market")
	if err != nil {
		return nil, err
	}
	round, err := paramUintOr(p, "round", 0)
	if err != nil {
		return nil, err
	}
	winners, err := paramUints(p, "winners")
	if err != nil {
		return nil, err
	}
	return nil, s.svc.Resolve(ctx, caller, marketID, round, winners)
}

func (s *session) claim(ctx context.Context, caller domain.Identity, p map[string]any) (map[string]any, error) {
	positionID, err := paramUint(p, "position")
	if err != nil {
		return nil, err
	}
	position, err := s.svc.GetPosition(ctx, positionID)
	if err != nil {
		return nil, err
	}
	settlement, err := s.svc.Claim(ctx, caller, positionID)
	if err != nil {
		return nil, err
	}
	s.flows.Out(position.MarketID, settlement.Payout)
	return map[string]any{
		"payout":        settlement.Payout,
		"fee":           settlement.Fee,
		"holder_amount": settlement.HolderAmount,
	}, nil
}

func (s *session) emergency(ctx context.Context, caller domain.Identity, action ActionType, p map[string]any) (map[string]any, error) {
	marketID, err := paramUint(p, "market")
	if err != nil {
		return nil, err
	}
	amount, err := paramUint(p, "amount")
	if err != nil {
		return nil, err
	}
	if action == ActionEmergencyWithdraw {
		if err := s.svc.EmergencyWithdraw(ctx, caller, marketID, amount); err != nil {
			return nil, err
		}
		s.flows.Out(marketID, amount)
		return nil, nil
	}
	if err := s.svc.EmergencyDeposit(ctx, caller, marketID, amount); err != nil {
		return nil, err
	}
	s.flows.In(marketID, amount)
	return nil, nil
}

func (s *session) governanceMember(ctx context.Context, caller domain.Identity, action ActionType, p map[string]any) error {
	name, err := paramString(p, "account")
	if err != nil {
		return err
	}
	id, err := s.identity(name)
	if err != nil {
		return err
	}
	switch action {
	case ActionAddAdmin:
		return s.svc.AddAdmin(ctx, caller, id)
	case ActionRemoveAdmin:
		return s.svc.RemoveAdmin(ctx, caller, id)
	default:
		return s.svc.SetTreasury(ctx, caller, id)
	}
}

func (s *session) marketSetter(ctx context.Context, caller domain.Identity, action ActionType, p map[string]any) error {
	marketID, err := paramUint(p, "market")
	if err != nil {
		return err
	}

	switch action {
	case ActionSetPaused:
		paused, err := paramBool(p, "paused")
		if err != nil {
			return err
		}
		return s.svc.SetPaused(ctx, caller, marketID, paused)
	case ActionSetRoundWeights:
		rounds, err := paramUints(p, "rounds")
		if err != nil {
			return err
		}
		weights, err := paramUints(p, "weights")
		if err != nil {
			return err
		}
		return s.svc.SetRoundWeights(ctx, caller, marketID, rounds, weights)
	}

	key := map[ActionType]string{
		ActionSetMaxBet:       "max_bet",
		ActionSetRoundLength:  "round_length",
		ActionSetCurrentRound: "round",
		ActionSetRoundWeight:  "weight",
	}[action]
	value, err := paramUint(p, key)
	if err != nil {
		return err
	}

	switch action {
	case ActionSetMaxBet:
		return s.svc.SetMaxBet(ctx, caller, marketID, value)
	case ActionSetRoundLength:
		return s.svc.SetRoundLength(ctx, caller, marketID, int64(value))
	case ActionSetCurrentRound:
		return s.svc.SetCurrentRound(ctx, caller, marketID, value)
	case ActionSetRoundWeight:
		round, err := paramUint(p, "round")
		if err != nil {
			return err
		}
		return s.svc.SetRoundWeight(ctx, caller, marketID, round, value)
	}
	return fmt.Errorf("%w: %s", ErrInvalidAction, action)
}
