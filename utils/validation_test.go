package utils

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAmount(t *testing.T) {
	dec, err := ValidateAmount("0.01")
	require.NoError(t, err)
	assert.Equal(t, "0.01", dec.String())

	_, err = ValidateAmount("")
	assert.Error(t, err)

	_, err = ValidateAmount("ten")
	assert.Error(t, err)

	_, err = ValidateAmount("-1")
	assert.Error(t, err)
}

func TestValidateTransactionHash(t *testing.T) {
	valid := "0x" + "ab12" + "000000000000000000000000000000000000000000000000000000000000"[:60]
	require.Len(t, valid, 66)
	assert.NoError(t, ValidateTransactionHash(valid))

	assert.Error(t, ValidateTransactionHash(""))
	assert.Error(t, ValidateTransactionHash("abcd"))
	assert.Error(t, ValidateTransactionHash("0x1234"))
	assert.Error(t, ValidateTransactionHash("0x"+"zz"+valid[4:]))
}

func TestValidateAddress(t *testing.T) {
	assert.NoError(t, ValidateAddress("0x384Aa214be0B279cbf211e9b2C992d8633F77848"))
	assert.Error(t, ValidateAddress(""))
	assert.Error(t, ValidateAddress("0x1234"))
}

func TestUnitsRoundTrip(t *testing.T) {
	raw, err := ParseUnits("0.01", 6)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), raw.Int64())

	human := FormatUnits(big.NewInt(10000), 6)
	assert.Equal(t, "0.01", human.String())

	human = FormatUnits(big.NewInt(5000), 6)
	assert.Equal(t, "0.005", human.String())
}
