package ledger

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"ammPool/internal/model"
)

var (
	assetAddr = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	alice     = common.HexToAddress("0x1111111111111111111111111111111111111111")
	bob       = common.HexToAddress("0x2222222222222222222222222222222222222222")
	carol     = common.HexToAddress("0x3333333333333333333333333333333333333333")
)

func deployAsset(t *testing.T, bank *Bank) *Token {
	t.Helper()
	token, err := bank.Deploy(assetAddr, model.TokenMeta{Symbol: "AAA", Name: "Asset A", Decimals: 18})
	require.NoError(t, err)
	return token
}

func TestDeploy(t *testing.T) {
	bank := NewBank()
	token := deployAsset(t, bank)

	require.Equal(t, assetAddr.Hex(), token.Meta().Address)
	ok, err := bank.HasCode(assetAddr)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = bank.HasCode(alice)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = bank.Deploy(assetAddr, model.TokenMeta{})
	require.ErrorIs(t, err, ErrAssetExists)

	l, ok := bank.Ledger(assetAddr)
	require.True(t, ok)
	require.Same(t, token, l)
	require.Len(t, bank.Tokens(), 1)
}

func TestTransfer(t *testing.T) {
	bank := NewBank()
	token := deployAsset(t, bank)
	require.NoError(t, token.Mint(alice, uint256.NewInt(100)))

	require.NoError(t, token.Transfer(alice, bob, uint256.NewInt(30)))
	require.Equal(t, uint64(70), token.BalanceOf(alice).Uint64())
	require.Equal(t, uint64(30), token.BalanceOf(bob).Uint64())
	require.Equal(t, uint64(100), token.TotalSupply().Uint64())

	err := token.Transfer(bob, alice, uint256.NewInt(31))
	require.ErrorIs(t, err, ErrInsufficientBalance)
	require.Equal(t, uint64(30), token.BalanceOf(bob).Uint64())

	require.NoError(t, token.Transfer(alice, alice, uint256.NewInt(70)))
	require.Equal(t, uint64(70), token.BalanceOf(alice).Uint64())
}

func TestTransferFrom(t *testing.T) {
	bank := NewBank()
	token := deployAsset(t, bank)
	require.NoError(t, token.Mint(alice, uint256.NewInt(100)))

	err := token.TransferFrom(bob, alice, carol, uint256.NewInt(10))
	require.ErrorIs(t, err, ErrInsufficientAllowance)

	require.NoError(t, token.Approve(alice, bob, uint256.NewInt(25)))
	require.NoError(t, token.TransferFrom(bob, alice, carol, uint256.NewInt(10)))
	require.Equal(t, uint64(15), token.Allowance(alice, bob).Uint64())
	require.Equal(t, uint64(10), token.BalanceOf(carol).Uint64())

	require.NoError(t, token.Approve(alice, bob, MaxAllowance))
	require.NoError(t, token.TransferFrom(bob, alice, carol, uint256.NewInt(40)))
	require.True(t, token.Allowance(alice, bob).Eq(MaxAllowance))

	err = token.TransferFrom(bob, alice, carol, uint256.NewInt(51))
	require.ErrorIs(t, err, ErrInsufficientBalance)
	require.True(t, token.Allowance(alice, bob).Eq(MaxAllowance))
}

func TestMintBurn(t *testing.T) {
	bank := NewBank()
	token := deployAsset(t, bank)

	require.NoError(t, token.Mint(alice, MaxAllowance))
	err := token.Mint(bob, uint256.NewInt(1))
	require.ErrorIs(t, err, ErrSupplyOverflow)
	require.True(t, token.BalanceOf(bob).IsZero())

	require.NoError(t, token.Burn(alice, MaxAllowance))
	require.True(t, token.TotalSupply().IsZero())

	err = token.Burn(alice, uint256.NewInt(1))
	require.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestRevertToSnapshot(t *testing.T) {
	bank := NewBank()
	token := deployAsset(t, bank)
	require.NoError(t, token.Mint(alice, uint256.NewInt(100)))
	require.NoError(t, token.Approve(alice, bob, uint256.NewInt(50)))

	id := bank.Snapshot()
	require.NoError(t, token.TransferFrom(bob, alice, carol, uint256.NewInt(20)))
	require.NoError(t, token.Mint(bob, uint256.NewInt(5)))
	require.NoError(t, token.Approve(carol, alice, uint256.NewInt(9)))
	other, err := bank.Deploy(bob, model.TokenMeta{Symbol: "BBB"})
	require.NoError(t, err)
	require.NoError(t, other.Mint(alice, uint256.NewInt(1)))

	bank.RevertToSnapshot(id)

	require.Equal(t, uint64(100), token.BalanceOf(alice).Uint64())
	require.True(t, token.BalanceOf(bob).IsZero())
	require.True(t, token.BalanceOf(carol).IsZero())
	require.Equal(t, uint64(50), token.Allowance(alice, bob).Uint64())
	require.True(t, token.Allowance(carol, alice).IsZero())
	require.Equal(t, uint64(100), token.TotalSupply().Uint64())
	_, ok := bank.Token(bob)
	require.False(t, ok)
}

func TestNestedSnapshots(t *testing.T) {
	bank := NewBank()
	token := deployAsset(t, bank)
	bank.Commit()

	outer := bank.Snapshot()
	require.NoError(t, token.Mint(alice, uint256.NewInt(10)))
	inner := bank.Snapshot()
	require.NoError(t, token.Mint(alice, uint256.NewInt(5)))

	bank.RevertToSnapshot(inner)
	require.Equal(t, uint64(10), token.BalanceOf(alice).Uint64())

	bank.RevertToSnapshot(outer)
	require.True(t, token.BalanceOf(alice).IsZero())
	require.Equal(t, 0, bank.Snapshot())
}
