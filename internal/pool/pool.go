package pool

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"ammPool/internal/metrics"
	"ammPool/internal/model"
)

// Config identifies a pool and its optional observers.
type Config struct {
	Address common.Address
	TokenA  common.Address
	TokenB  common.Address
	Events  EventSink
	Metrics *metrics.PoolMetrics
}

// Pool is a constant-product pool over two assets. It is not safe for
// concurrent use; callers serialize operations the way a ledger serializes
// transactions.
type Pool struct {
	address common.Address
	tokens  [2]common.Address
	ledgers [2]Ledger
	shares  ShareLedger
	host    Host
	events  EventSink
	metrics *metrics.PoolMetrics
	logger  *zap.Logger
	state   state

	// hex forms of address and tokens, used as labels
	addressHex string
	tokenHex   [2]string
}

// state is the pool-owned accounting. It is a value so a copy is a snapshot.
type state struct {
	reserves [2]uint256.Int
	kLast    uint256.Int
}

// New builds an empty pool. Both assets must be deployed on host and distinct.
func New(cfg Config, host Host, shares ShareLedger, logger *zap.Logger) (*Pool, error) {
	if host == nil {
		return nil, fmt.Errorf("host is nil")
	}
	if shares == nil {
		return nil, fmt.Errorf("share ledger is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	err := CheckAssets(cfg.TokenA, cfg.TokenB, func(asset common.Address) (bool, error) {
		_, ok := host.Ledger(asset)
		return ok, nil
	})
	if err != nil {
		return nil, err
	}
	ledgerA, _ := host.Ledger(cfg.TokenA)
	ledgerB, _ := host.Ledger(cfg.TokenB)

	return &Pool{
		address: cfg.Address,
		tokens:  [2]common.Address{cfg.TokenA, cfg.TokenB},
		ledgers: [2]Ledger{ledgerA, ledgerB},
		shares:  shares,
		host:    host,
		events:  cfg.Events,
		metrics: cfg.Metrics,
		logger:  logger.With(zap.String("pool", cfg.Address.Hex())),

		addressHex: cfg.Address.Hex(),
		tokenHex:   [2]string{cfg.TokenA.Hex(), cfg.TokenB.Hex()},
	}, nil
}

// SetMetrics attaches m, or detaches with nil, and publishes the current
// state gauges to it. Calls made while detached are not counted.
func (p *Pool) SetMetrics(m *metrics.PoolMetrics) {
	p.metrics = m
	p.publishState()
}

// CheckAssets validates a candidate pair: each asset must have code and the
// two must differ.
func CheckAssets(tokenA, tokenB common.Address, hasCode func(common.Address) (bool, error)) error {
	for _, asset := range []common.Address{tokenA, tokenB} {
		ok, err := hasCode(asset)
		if err != nil {
			return fmt.Errorf("code check %s: %w", asset.Hex(), err)
		}
		if !ok {
			return ErrInvalidAsset.Wrapf("no asset deployed at %s", asset.Hex())
		}
	}
	if tokenA == tokenB {
		return ErrIdenticalAssets.Wrapf("%s", tokenA.Hex())
	}
	return nil
}

// Address returns the pool's own address, which custodies reserves and LP shares.
func (p *Pool) Address() common.Address {
	return p.address
}

// TokenA returns the first asset.
func (p *Pool) TokenA() common.Address {
	return p.tokens[AssetA]
}

// TokenB returns the second asset.
func (p *Pool) TokenB() common.Address {
	return p.tokens[AssetB]
}

// GetReserves returns the cached reserves. They are not re-read from the ledgers.
func (p *Pool) GetReserves() (*uint256.Int, *uint256.Int) {
	return new(uint256.Int).Set(&p.state.reserves[AssetA]), new(uint256.Int).Set(&p.state.reserves[AssetB])
}

// KLast returns the invariant constant fixed at the last liquidity event.
func (p *Pool) KLast() *uint256.Int {
	return new(uint256.Int).Set(&p.state.kLast)
}

// State returns a snapshot of the pool's accounting.
func (p *Pool) State() model.PoolState {
	return model.PoolState{
		Address:     p.addressHex,
		TokenA:      p.tokenHex[AssetA],
		TokenB:      p.tokenHex[AssetB],
		ReserveA:    p.state.reserves[AssetA].Dec(),
		ReserveB:    p.state.reserves[AssetB].Dec(),
		KLast:       p.state.kLast.Dec(),
		TotalSupply: p.shares.TotalSupply().Dec(),
	}
}

func (p *Pool) resolve(token common.Address) (Asset, bool) {
	switch token {
	case p.tokens[AssetA]:
		return AssetA, true
	case p.tokens[AssetB]:
		return AssetB, true
	default:
		return 0, false
	}
}

// atomic runs fn as one unit: on failure every ledger write made by fn is
// reverted and the pool's own fields are restored.
func (p *Pool) atomic(fn func() error) error {
	id := p.host.Snapshot()
	saved := p.state
	if err := fn(); err != nil {
		p.host.RevertToSnapshot(id)
		p.state = saved
		return err
	}
	return nil
}

// sync re-reads both reserves from the asset ledgers.
func (p *Pool) sync() {
	p.state.reserves[AssetA] = *p.ledgers[AssetA].BalanceOf(p.address)
	p.state.reserves[AssetB] = *p.ledgers[AssetB].BalanceOf(p.address)
}

func (p *Pool) publishState() {
	if p.metrics == nil {
		return
	}
	p.metrics.SetState(p.tokenHex[AssetA], p.tokenHex[AssetB], &p.state.reserves[AssetA], &p.state.reserves[AssetB], p.shares.TotalSupply(), &p.state.kLast)
}

func (p *Pool) emit(name string, decoded interface{}) {
	p.publishState()
	if p.events == nil {
		return
	}
	state := p.State()
	p.events.Emit(model.TypedEvent{
		Address:   state.Address,
		EventName: name,
		Decoded:   decoded,
		PoolMeta:  state.Meta(),
	})
}

func (p *Pool) reject(op string, caller common.Address, err error) error {
	kind := Kind(err)
	p.logger.Debug("call rejected",
		zap.String("op", op),
		zap.String("caller", caller.Hex()),
		zap.String("kind", kind),
		zap.Error(err),
	)
	p.metrics.ObserveRejected(op, kind)
	return err
}
