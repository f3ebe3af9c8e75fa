package indexer

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestParseAddresses(t *testing.T) {
	got, err := ParseAddresses([]string{" 0x00000000000000000000000000000000000000aa ", ""})
	require.NoError(t, err)
	require.Equal(t, []common.Address{common.HexToAddress("0xaa")}, got)

	_, err = ParseAddresses([]string{"0x1234"})
	require.Error(t, err)
}

func TestParseTopic0(t *testing.T) {
	hash := "0x11" + strings.Repeat("0", 62)
	got, err := ParseTopic0([]string{hash})
	require.NoError(t, err)
	require.Equal(t, common.HexToHash(hash), got[0])

	_, err = ParseTopic0([]string{"0x1234"})
	require.Error(t, err)
	_, err = ParseTopic0([]string{"zz"})
	require.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount("1000")
	require.NoError(t, err)
	require.Equal(t, uint64(1000), v.Uint64())

	v, err = ParseAmount("MAX")
	require.NoError(t, err)
	require.Equal(t, 256, v.BitLen())

	for _, bad := range []string{"", "-1", "1.5", "abc", "115792089237316195423570985008687907853269984665640564039457584007913129639936"} {
		_, err := ParseAmount(bad)
		require.Error(t, err, bad)
	}
}
