package pokerroom

import (
	"errors"
	"sync"

	"github.com/weedbox/pokerroom/game"
	"github.com/weedbox/pokerroom/seat_manager"
)

var (
	ErrManagerTableNotFound = errors.New("manager: table not found")
)

// Manager is the process-wide registry of running tables. Each engine owns
// its table exclusively; the manager only routes commands by table id.
type Manager interface {
	Reset()

	GetTableEngine(tableID string) (TableEngine, error)
	CreateTable(setting TableSetting, opts ...TableEngineOpt) (*Table, error)
	CloseTable(tableID string) error
	StartTableGame(tableID string) error
	RequestNextHand(tableID string) error
	ApplyCommand(tableID string, cmd Command) error

	PlayerClaimSeat(tableID string, seat int, playerID, playerName string, chips int64) error
	PlayerStandUp(tableID, playerID string) error
	PlayerRedeemChips(tableID, playerID string, chips int64) error
	GetSeatState(tableID string) (map[int]*seat_manager.SeatPlayer, error)

	PlayerFold(tableID, playerID string) error
	PlayerCheck(tableID, playerID string) error
	PlayerCall(tableID, playerID string) error
	PlayerBet(tableID, playerID string, amount int64) error
	PlayerRaise(tableID, playerID string, amount int64) error
	SelectVariant(tableID, playerID string, variant game.Variant) error
	EnableRunItTwice(tableID, playerID string, runs int, entropy []byte) error
}

type manager struct {
	tableEngines sync.Map
}

func NewManager() Manager {
	return &manager{
		tableEngines: sync.Map{},
	}
}

func (m *manager) Reset() {
	m.tableEngines = sync.Map{}
}

func (m *manager) GetTableEngine(tableID string) (TableEngine, error) {
	tableEngine, exist := m.tableEngines.Load(tableID)
	if !exist {
		return nil, ErrManagerTableNotFound
	}
	return tableEngine.(TableEngine), nil
}

func (m *manager) CreateTable(setting TableSetting, opts ...TableEngineOpt) (*Table, error) {
	tableEngine := NewTableEngine(opts...)
	table, err := tableEngine.CreateTable(setting)
	if err != nil {
		return nil, err
	}

	m.tableEngines.Store(table.ID, tableEngine)
	return table, nil
}

func (m *manager) CloseTable(tableID string) error {
	tableEngine, err := m.GetTableEngine(tableID)
	if err != nil {
		return err
	}

	if err := tableEngine.CloseTable(); err != nil {
		return err
	}

	m.tableEngines.Delete(tableID)
	return nil
}

func (m *manager) StartTableGame(tableID string) error {
	tableEngine, err := m.GetTableEngine(tableID)
	if err != nil {
		return err
	}
	return tableEngine.StartTableGame()
}

func (m *manager) RequestNextHand(tableID string) error {
	tableEngine, err := m.GetTableEngine(tableID)
	if err != nil {
		return err
	}
	return tableEngine.RequestNextHand()
}

func (m *manager) ApplyCommand(tableID string, cmd Command) error {
	tableEngine, err := m.GetTableEngine(tableID)
	if err != nil {
		return err
	}
	return tableEngine.ApplyCommand(cmd)
}

func (m *manager) PlayerClaimSeat(tableID string, seat int, playerID, playerName string, chips int64) error {
	tableEngine, err := m.GetTableEngine(tableID)
	if err != nil {
		return err
	}
	return tableEngine.PlayerClaimSeat(seat, playerID, playerName, chips)
}

func (m *manager) PlayerStandUp(tableID, playerID string) error {
	tableEngine, err := m.GetTableEngine(tableID)
	if err != nil {
		return err
	}
	return tableEngine.PlayerStandUp(playerID)
}

func (m *manager) PlayerRedeemChips(tableID, playerID string, chips int64) error {
	tableEngine, err := m.GetTableEngine(tableID)
	if err != nil {
		return err
	}
	return tableEngine.PlayerRedeemChips(playerID, chips)
}

func (m *manager) GetSeatState(tableID string) (map[int]*seat_manager.SeatPlayer, error) {
	tableEngine, err := m.GetTableEngine(tableID)
	if err != nil {
		return nil, err
	}
	return tableEngine.GetSeatState(), nil
}

func (m *manager) PlayerFold(tableID, playerID string) error {
	tableEngine, err := m.GetTableEngine(tableID)
	if err != nil {
		return err
	}
	return tableEngine.PlayerFold(playerID)
}

func (m *manager) PlayerCheck(tableID, playerID string) error {
	tableEngine, err := m.GetTableEngine(tableID)
	if err != nil {
		return err
	}
	return tableEngine.PlayerCheck(playerID)
}

func (m *manager) PlayerCall(tableID, playerID string) error {
	tableEngine, err := m.GetTableEngine(tableID)
	if err != nil {
		return err
	}
	return tableEngine.PlayerCall(playerID)
}

func (m *manager) PlayerBet(tableID, playerID string, amount int64) error {
	tableEngine, err := m.GetTableEngine(tableID)
	if err != nil {
		return err
	}
	return tableEngine.PlayerBet(playerID, amount)
}

func (m *manager) PlayerRaise(tableID, playerID string, amount int64) error {
	tableEngine, err := m.GetTableEngine(tableID)
	if err != nil {
		return err
	}
	return tableEngine.PlayerRaise(playerID, amount)
}

func (m *manager) SelectVariant(tableID, playerID string, variant game.Variant) error {
	tableEngine, err := m.GetTableEngine(tableID)
	if err != nil {
		return err
	}
	return tableEngine.SelectVariant(playerID, variant)
}

func (m *manager) EnableRunItTwice(tableID, playerID string, runs int, entropy []byte) error {
	tableEngine, err := m.GetTableEngine(tableID)
	if err != nil {
		return err
	}
	return tableEngine.EnableRunItTwice(playerID, runs, entropy)
}
