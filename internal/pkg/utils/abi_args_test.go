package utils

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inputs(t *testing.T, types ...string) abi.Arguments {
	t.Helper()
	args := make(abi.Arguments, 0, len(types))
	for _, typ := range types {
		ty, err := abi.NewType(typ, "", nil)
		require.NoError(t, err)
		args = append(args, abi.Argument{Name: "arg", Type: ty})
	}
	return args
}

func TestCoerceArgs(t *testing.T) {
	in := inputs(t, "uint256", "address", "bool", "string", "uint8", "int64", "bytes", "bytes4")
	got, err := CoerceArgs(in, []any{
		"1000000000000000000000",
		"0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
		"true",
		"risk",
		"0x10",
		"-5",
		"0xdeadbeef",
		"0x01020304",
	})
	require.NoError(t, err)

	want, _ := new(big.Int).SetString("1000000000000000000000", 10)
	assert.Equal(t, want, got[0])
	assert.Equal(t, common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), got[1])
	assert.Equal(t, true, got[2])
	assert.Equal(t, "risk", got[3])
	assert.Equal(t, uint8(16), got[4])
	assert.Equal(t, int64(-5), got[5])
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, got[6])
	assert.Equal(t, [4]byte{1, 2, 3, 4}, got[7])

	// The result must be packable as constructor input.
	_, err = in.Pack(got...)
	require.NoError(t, err)
}

func TestCoerceArgs_PassesThroughNonStrings(t *testing.T) {
	v := big.NewInt(7)
	got, err := CoerceArgs(inputs(t, "uint256"), []any{v})
	require.NoError(t, err)
	assert.Same(t, v, got[0])
}

func TestCoerceArgs_Errors(t *testing.T) {
	tests := []struct {
		name  string
		types []string
		args  []any
	}{
		{"arity", []string{"uint256"}, nil},
		{"uint overflow", []string{"uint8"}, []any{"256"}},
		{"negative uint", []string{"uint256"}, []any{"-1"}},
		{"int underflow", []string{"int8"}, []any{"-129"}},
		{"not a number", []string{"uint256"}, []any{"ten"}},
		{"bad address", []string{"address"}, []any{"0x1234"}},
		{"bad bool", []string{"bool"}, []any{"maybe"}},
		{"fixed bytes length", []string{"bytes4"}, []any{"0x0102"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CoerceArgs(inputs(t, tt.types...), tt.args)
			assert.Error(t, err)
		})
	}
}
