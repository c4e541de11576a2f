package scenario

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/roundpool/internal/database/memory"
	"github.com/osse101/roundpool/internal/domain"
	"github.com/osse101/roundpool/internal/event"
)

func loadTestdata(t *testing.T, name string) *Scenario {
	t.Helper()
	sc, err := LoadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return sc
}

func TestEngine_Testdata(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	engine := NewEngine()
	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			sc, err := LoadFile(file)
			require.NoError(t, err)

			result, err := engine.Run(context.Background(), sc)
			require.NoError(t, err)
			for _, step := range result.FailedSteps() {
				t.Errorf("step %d %s failed: %s %+v", step.StepIndex, step.StepName, step.Error, step.Assertions)
			}
			assert.True(t, result.Success, result.Error)
			assert.Len(t, result.Steps, len(sc.Steps))
		})
	}
}

func TestEngine_FailedExpectationStopsRun(t *testing.T) {
	sc := loadTestdata(t, "single_winner.yaml")
	sc.Steps[5].Expect["holder_amount"] = 200

	result, err := NewEngine().Run(context.Background(), sc)
	require.NoError(t, err)
	assert.False(t, result.Success)
	require.Len(t, result.Steps, 6)

	failed := result.FailedSteps()
	require.Len(t, failed, 1)
	assert.Equal(t, "winner claims", failed[0].StepName)
}

func TestEngine_UnexpectedErrorFailsStep(t *testing.T) {
	sc := &Scenario{
		ID:       "unexpected",
		Deployer: "0x00000000000000000000000000000000000000d1",
		Steps: []Step{
			{Action: ActionCreateMarket, Caller: "deployer", Params: map[string]any{"asset": "USDC"}},
		},
	}

	result, err := NewEngine().Run(context.Background(), sc)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Steps[0].Error, "max_bet")
}

func TestEngine_UnknownCaller(t *testing.T) {
	sc := &Scenario{
		ID:       "unknown-caller",
		Deployer: "0x00000000000000000000000000000000000000d1",
		Steps: []Step{
			{Action: ActionCreateMarket, Caller: "nobody", Params: map[string]any{"asset": "USDC", "max_bet": 1}},
		},
	}

	result, err := NewEngine().Run(context.Background(), sc)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Steps[0].Error, ErrUnknownAccount.Error())
}

func TestEngine_PublishesToBus(t *testing.T) {
	bus := event.NewMemoryBus()
	var settled int
	bus.Subscribe(event.PositionSettled, func(ctx context.Context, e event.Event) error {
		settled++
		return nil
	})

	_, err := NewEngine(WithEventBus(bus)).Run(context.Background(), loadTestdata(t, "split_pool.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 3, settled)
}

func TestEngine_RunAll(t *testing.T) {
	scenarios := []*Scenario{
		loadTestdata(t, "single_winner.yaml"),
		loadTestdata(t, "split_pool.yaml"),
		loadTestdata(t, "governance.yaml"),
	}

	results, err := NewEngine().RunAll(context.Background(), scenarios, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, scenarios[i].ID, r.ScenarioID)
		assert.True(t, r.Success)
	}
}

func TestParse_RejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing steps", "id: x\ndeployer: deployer\n"},
		{"unknown action", "id: x\ndeployer: d\nsteps:\n  - action: teleport\n"},
		{"bad account address", "id: x\ndeployer: d\naccounts: {a: nope}\nsteps:\n  - action: advance\n"},
		{"negative funding", "id: x\ndeployer: d\nfunding: [{account: a, asset: U, amount: -1}]\nsteps:\n  - action: advance\n"},
		{"not yaml", "id: [unterminated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestParse_Valid(t *testing.T) {
	sc := loadTestdata(t, "round_window.yaml")
	assert.Equal(t, "round-window", sc.ID)
	assert.Equal(t, 2026, sc.Start.Year())
	assert.Equal(t, ActionAdvance, sc.Steps[1].Action)
	assert.Equal(t, "alice", sc.Steps[2].Caller)
}

// keyRecorder is a Locker that remembers every key it was asked for
type keyRecorder struct {
	mu   sync.Mutex
	keys []string
}

func (r *keyRecorder) Lock(_ context.Context, key string) (func(), error) {
	r.mu.Lock()
	r.keys = append(r.keys, key)
	r.mu.Unlock()
	return func() {}, nil
}

func TestEngine_RunsGetTheirOwnStoreAndLocks(t *testing.T) {
	var (
		mu     sync.Mutex
		opened []string
		closed []string
	)
	factory := func(ctx context.Context, runID string, gov *domain.Governance) (*Store, error) {
		mu.Lock()
		defer mu.Unlock()
		opened = append(opened, runID)
		return &Store{
			Ledger:   memory.NewLedger(gov),
			Location: "loc-" + runID,
			Close: func() {
				mu.Lock()
				defer mu.Unlock()
				closed = append(closed, runID)
			},
		}, nil
	}
	locks := &keyRecorder{}
	engine := NewEngine(WithStoreFactory(factory), WithLocker(locks))

	sc := loadTestdata(t, "single_winner.yaml")
	results, err := engine.RunAll(context.Background(), []*Scenario{sc, sc}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.NotEqual(t, results[0].RunID, results[1].RunID)
	assert.ElementsMatch(t, []string{results[0].RunID, results[1].RunID}, opened)
	assert.ElementsMatch(t, opened, closed)
	for _, r := range results {
		assert.True(t, r.Success, r.Error)
		assert.Equal(t, "loc-"+r.RunID, r.Store)
	}

	require.NotEmpty(t, locks.keys)
	for _, key := range locks.keys {
		assert.True(t,
			strings.HasPrefix(key, results[0].RunID+"/") || strings.HasPrefix(key, results[1].RunID+"/"),
			"lock key %q is not scoped to a run", key)
	}
}

func TestEngine_StoreFactoryError(t *testing.T) {
	boom := errors.New("no database")
	engine := NewEngine(WithStoreFactory(func(context.Context, string, *domain.Governance) (*Store, error) {
		return nil, boom
	}))

	result, err := engine.Run(context.Background(), loadTestdata(t, "single_winner.yaml"))
	assert.ErrorIs(t, err, boom)
	assert.False(t, result.Success)
	assert.Empty(t, result.Steps)
}
