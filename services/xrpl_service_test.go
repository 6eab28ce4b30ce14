package services_test

import (
	"testing"

	"github.com/yebtimotheous/gnx/services"

	"github.com/stretchr/testify/assert"
)

// TestHexToString verifica a decodificação de URIs hexadecimais da ledger.
func TestHexToString(t *testing.T) {
	assert.Equal(t, "ipfs://Qmhash", services.HexToString("697066733A2F2F516D68617368"))
	assert.Equal(t, "ipfs://Qmhash", services.HexToString("0x697066733A2F2F516D68617368"))
	assert.Equal(t, "", services.HexToString(""))
	assert.Equal(t, "", services.HexToString("ZZNOTHEX"))
	// Bytes válidos em hex mas inválidos em UTF-8 não são uma URI.
	assert.Equal(t, "", services.HexToString("FFFE"))
}

// TestStringToHex verifica a codificação em maiúsculas exigida pelo campo URI.
func TestStringToHex(t *testing.T) {
	assert.Equal(t, "697066733A2F2F516D68617368", services.StringToHex("ipfs://Qmhash"))
	assert.Equal(t, "", services.StringToHex(""))
}

// TestStringToHexRoundTrip verifica que codificação e decodificação são inversas.
func TestStringToHexRoundTrip(t *testing.T) {
	original := "ipfs://QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"
	assert.Equal(t, original, services.HexToString(services.StringToHex(original)))
}

// TestFormatNFTokenID verifica a normalização: sem espaços, maiúsculas e com
// o prefixo "00".
func TestFormatNFTokenID(t *testing.T) {
	assert.Equal(t, "00ABCDEF", services.FormatNFTokenID("abcdef"))
	assert.Equal(t, "00ABCDEF", services.FormatNFTokenID("00abcdef"))
	assert.Equal(t, "00ABCDEF", services.FormatNFTokenID(" ab cd ef "))
	assert.Equal(t, "0008ABCD", services.FormatNFTokenID("0008abcd"))
}

// TestNewXRPLServiceRejectsUnknownNetwork verifica a validação da rede.
func TestNewXRPLServiceRejectsUnknownNetwork(t *testing.T) {
	_, err := services.NewXRPLService("REGTEST")
	assert.Error(t, err)

	svc, err := services.NewXRPLService("TESTNET")
	assert.NoError(t, err)
	assert.Equal(t, "Testnet", svc.NetworkName())
}

// TestSetNetwork verifica a troca de rede e a rejeição de redes desconhecidas.
func TestSetNetwork(t *testing.T) {
	svc, err := services.NewXRPLService("TESTNET")
	assert.NoError(t, err)

	assert.NoError(t, svc.SetNetwork("MAINNET"))
	assert.Equal(t, "Mainnet", svc.NetworkName())

	assert.Error(t, svc.SetNetwork("REGTEST"))
	assert.Equal(t, "Mainnet", svc.NetworkName())
}

// TestNetworkNames verifica a listagem estável das redes suportadas.
func TestNetworkNames(t *testing.T) {
	assert.Equal(t, []string{"DEVNET", "MAINNET", "TESTNET"}, services.NetworkNames())
}

// TestIsNotFound verifica a classificação dos códigos retentáveis da ledger.
func TestIsNotFound(t *testing.T) {
	assert.True(t, services.IsNotFound(&services.LedgerError{Code: "txnNotFound"}))
	assert.True(t, services.IsNotFound(&services.LedgerError{Code: "objectNotFound"}))
	assert.False(t, services.IsNotFound(&services.LedgerError{Code: "invalidParams"}))
	assert.False(t, services.IsNotFound(assert.AnError))
	assert.False(t, services.IsNotFound(nil))
}
