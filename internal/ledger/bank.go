package ledger

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"ammPool/internal/model"
	"ammPool/internal/pool"
)

// Bank is an in-memory set of fungible-asset ledgers sharing one write
// journal. A snapshot is a journal position; reverting to it undoes every
// write recorded after it, across all ledgers.
type Bank struct {
	tokens  map[common.Address]*Token
	journal []journalEntry
}

func NewBank() *Bank {
	return &Bank{tokens: make(map[common.Address]*Token)}
}

// Deploy registers a new ledger at address.
func (b *Bank) Deploy(address common.Address, meta model.TokenMeta) (*Token, error) {
	if _, ok := b.tokens[address]; ok {
		return nil, ErrAssetExists.Wrapf("%s", address.Hex())
	}
	meta.Address = address.Hex()
	token := newToken(b, address, meta)
	b.tokens[address] = token
	b.journal = append(b.journal, deployChange{bank: b, address: address})
	return token, nil
}

// Token returns the ledger deployed at address.
func (b *Bank) Token(address common.Address) (*Token, bool) {
	token, ok := b.tokens[address]
	return token, ok
}

// Ledger implements pool.Host.
func (b *Bank) Ledger(address common.Address) (pool.Ledger, bool) {
	token, ok := b.tokens[address]
	if !ok {
		return nil, false
	}
	return token, true
}

// HasCode reports whether a ledger is deployed at address.
func (b *Bank) HasCode(address common.Address) (bool, error) {
	_, ok := b.tokens[address]
	return ok, nil
}

// Tokens returns the deployed ledgers ordered by address.
func (b *Bank) Tokens() []*Token {
	out := make([]*Token, 0, len(b.tokens))
	for _, token := range b.tokens {
		out = append(out, token)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].address.Cmp(out[j].address) < 0
	})
	return out
}

// Snapshot returns the current journal position.
func (b *Bank) Snapshot() int {
	return len(b.journal)
}

// RevertToSnapshot undoes every write recorded after id.
func (b *Bank) RevertToSnapshot(id int) {
	if id < 0 || id > len(b.journal) {
		return
	}
	for i := len(b.journal) - 1; i >= id; i-- {
		b.journal[i].revert()
	}
	b.journal = b.journal[:id]
}

// Commit drops the journal. Snapshots taken before Commit become invalid.
func (b *Bank) Commit() {
	b.journal = b.journal[:0]
}

func (b *Bank) record(entry journalEntry) {
	b.journal = append(b.journal, entry)
}
