// Package scenario replays scripted ledger sessions against an in-memory
// ledger and checks the expected outcome of every step.
package scenario

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/osse101/roundpool/internal/validation"
)

// ActionType defines the type of action in a scenario step
type ActionType string

const (
	// Governance actions
	ActionCreateMarket      ActionType = "create_market"
	ActionSetPaused         ActionType = "set_paused"
	ActionSetMaxBet         ActionType = "set_max_bet"
	ActionSetRoundLength    ActionType = "set_round_length"
	ActionSetCurrentRound   ActionType = "set_current_round"
	ActionSetRoundWeight    ActionType = "set_round_weight"
	ActionSetRoundWeights   ActionType = "set_round_weights"
	ActionSetFeeRate        ActionType = "set_fee_rate"
	ActionAddAdmin          ActionType = "add_admin"
	ActionRemoveAdmin       ActionType = "remove_admin"
	ActionSetTreasury       ActionType = "set_treasury"
	ActionEmergencyWithdraw ActionType = "emergency_withdraw"
	ActionEmergencyDeposit  ActionType = "emergency_deposit"

	// Betting actions
	ActionPlaceBet      ActionType = "place_bet"
	ActionResolve       ActionType = "resolve"
	ActionClaim         ActionType = "claim"
	ActionComputePayout ActionType = "compute_payout"

	// Harness actions
	ActionAdvance      ActionType = "advance"
	ActionCheckBalance ActionType = "check_balance"
	ActionCheckPool    ActionType = "check_pool"
)

// Reserved account names
const (
	AccountDeployer = "deployer"
	AccountTreasury = "treasury"
)

// ExpectError is the expectation key matched against the error kind of a step
const ExpectError = "error"

// SchemaName is the name the scenario schema is registered under
const SchemaName = "scenario.schema.json"

//go:embed schema/scenario.schema.json
var schemaJSON []byte

// Scenario is a scripted ledger session
type Scenario struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Start       time.Time         `yaml:"start"`
	Deployer    string            `yaml:"deployer"`
	Treasury    string            `yaml:"treasury"`
	Accounts    map[string]string `yaml:"accounts"`
	Funding     []Funding         `yaml:"funding"`
	Steps       []Step            `yaml:"steps"`
}

// Funding mints an opening balance before the first step
type Funding struct {
	Account string `yaml:"account"`
	Asset   string `yaml:"asset"`
	Amount  uint64 `yaml:"amount"`
}

// Step is one ledger call and what it should produce
type Step struct {
	Name   string         `yaml:"name"`
	Action ActionType     `yaml:"action"`
	Caller string         `yaml:"caller"`
	Params map[string]any `yaml:"params"`
	Expect map[string]any `yaml:"expect"`
}

// Label returns the step name, falling back to the action
func (s Step) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return string(s.Action)
}

// NewSchemaValidator returns a validator with the scenario schema registered
func NewSchemaValidator() (validation.SchemaValidator, error) {
	v := validation.NewSchemaValidator()
	if err := v.Register(SchemaName, schemaJSON); err != nil {
		return nil, err
	}
	return v, nil
}

// Parse validates a YAML document against the scenario schema and decodes it
func Parse(data []byte) (*Scenario, error) {
	v, err := NewSchemaValidator()
	if err != nil {
		return nil, err
	}
	if err := v.ValidateYAML(SchemaName, data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}
	return &sc, nil
}

// LoadFile reads and parses a scenario file
func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario %s: %w", path, err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}
