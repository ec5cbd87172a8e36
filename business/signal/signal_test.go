package signal

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fulcrumlabs/flashrelay/internal/apperror"
)

func validSignal() *TradeSignal {
	return &TradeSignal{
		ChainID:        137,
		Token:          "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174",
		Amount:         "1000000000",
		FlashSource:    FlashSourceBalancer,
		Protocols:      []uint8{1},
		Routers:        []string{"0x1111111111111111111111111111111111111111"},
		Path:           []string{"0x2222222222222222222222222222222222222222"},
		Extras:         []string{"0x"},
		ExpectedProfit: 12.5,
	}
}

func TestValidateAccepts(t *testing.T) {
	s := validSignal()
	require.NoError(t, s.Validate(map[uint64]bool{137: true}))
	require.Equal(t, "1000000000", s.AmountRaw().String())
}

func TestValidateRejectsUnknownChain(t *testing.T) {
	s := validSignal()
	err := s.Validate(map[uint64]bool{1: true})
	require.Error(t, err)
	require.Equal(t, apperror.CodeInvalidSignal, err.(*apperror.AppError).Code)
}

func TestValidateRejectsBadToken(t *testing.T) {
	s := validSignal()
	s.Token = "not-an-address"
	require.Error(t, s.Validate(nil))
}

func TestValidateRejectsZeroAmount(t *testing.T) {
	s := validSignal()
	s.Amount = "0"
	require.Error(t, s.Validate(nil))
}

func TestValidateRejectsEmptyProtocols(t *testing.T) {
	s := validSignal()
	s.Protocols = nil
	s.Routers = nil
	s.Path = nil
	s.Extras = nil
	require.Error(t, s.Validate(nil))
}

func TestValidateRejectsTooManyProtocols(t *testing.T) {
	s := validSignal()
	for i := 0; i < MaxProtocols; i++ {
		s.Protocols = append(s.Protocols, 1)
		s.Routers = append(s.Routers, s.Routers[0])
		s.Path = append(s.Path, s.Path[0])
		s.Extras = append(s.Extras, "0x")
	}
	require.Error(t, s.Validate(nil))
}

func TestValidateRejectsMismatchedArrayLengths(t *testing.T) {
	s := validSignal()
	s.Routers = append(s.Routers, s.Routers[0])
	require.Error(t, s.Validate(nil))
}

func TestUnmarshalFromRejectsMalformedJSON(t *testing.T) {
	_, err := UnmarshalFrom([]byte("{not json"))
	require.Error(t, err)
}
