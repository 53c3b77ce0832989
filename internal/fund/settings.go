package fund

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// SettingsState is the persisted risk configuration.
type SettingsState struct {
	PortfolioSize float64   `json:"portfolio_size"`
	RiskPerTrade  float64   `json:"risk_per_trade"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SettingsManager holds the active risk parameters with concurrency safety.
// An empty file path keeps the settings in memory only.
type SettingsManager struct {
	mu       sync.Mutex
	state    *SettingsState
	filePath string
}

// NewSettingsManager loads the saved settings, falling back to defaults.
func NewSettingsManager(filePath string, defaults RiskParams) (*SettingsManager, error) {
	state, err := LoadSettings(filePath)
	if err != nil {
		return nil, err
	}
	if state.PortfolioSize <= 0 || state.RiskPerTrade <= 0 {
		state.PortfolioSize = defaults.PortfolioSize
		state.RiskPerTrade = defaults.RiskPerTrade
	}
	return &SettingsManager{state: state, filePath: filePath}, nil
}

// Params returns the active risk parameters.
func (m *SettingsManager) Params() RiskParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	return RiskParams{RiskPerTrade: m.state.RiskPerTrade, PortfolioSize: m.state.PortfolioSize}
}

// State returns a copy of the current settings.
func (m *SettingsManager) State() SettingsState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.state
}

// Update stores a new portfolio size and risk given as a percent (2.5 means 2.5%).
func (m *SettingsManager) Update(portfolioSize, riskPercent float64) (RiskParams, error) {
	p := RiskParams{PortfolioSize: portfolioSize, RiskPerTrade: riskPercent / 100.0}
	if err := p.Validate(); err != nil {
		return RiskParams{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.PortfolioSize = p.PortfolioSize
	m.state.RiskPerTrade = p.RiskPerTrade
	if err := m.save(); err != nil {
		return RiskParams{}, fmt.Errorf("save settings: %w", err)
	}
	log.Info().
		Float64("portfolio_size", p.PortfolioSize).
		Float64("risk_per_trade", p.RiskPerTrade).
		Msg("risk settings updated")
	return p, nil
}

func (m *SettingsManager) save() error {
	if m.filePath == "" {
		m.state.UpdatedAt = time.Now()
		return nil
	}
	return SaveSettings(m.filePath, m.state)
}

// LoadSettings reads settings from a JSON file. A missing file yields a zero state.
func LoadSettings(filePath string) (*SettingsState, error) {
	if filePath == "" {
		return &SettingsState{}, nil
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &SettingsState{}, nil
		}
		return nil, err
	}
	var state SettingsState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return &state, nil
}

// SaveSettings writes settings to a JSON file.
func SaveSettings(filePath string, state *SettingsState) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, data, 0644)
}
