package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/yebtimotheous/gnx/models"
	"github.com/yebtimotheous/gnx/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestHoldingsService(ledger services.LedgerGateway, fetcher services.JSONFetcher) *services.HoldingsService {
	svc := services.NewHoldingsService(ledger, fetcher)
	svc.BatchSize = 2
	svc.BatchDelay = time.Millisecond
	svc.FetchRetry = services.LinearRetry(2, time.Millisecond)
	svc.Gateways = []string{"https://gw1/ipfs/", "https://gw2/ipfs/"}
	return svc
}

func fillMetadata(metadata models.NFTMetadata) func(interface{}) {
	return func(out interface{}) {
		*out.(*models.NFTMetadata) = metadata
	}
}

// TestListHoldingsPreservesOrder verifica que o resultado tem uma entrada por
// token, na ordem devolvida pela ledger, mesmo com lotes concorrentes.
func TestListHoldingsPreservesOrder(t *testing.T) {
	ledger := new(MockLedger)
	fetcher := new(MockFetcher)

	nfts := []models.AccountNFT{
		{NFTokenID: "00AAA", URI: services.StringToHex("https://meta.example/a")},
		{NFTokenID: "00BBB", URI: services.StringToHex("https://meta.example/b")},
		{NFTokenID: "00CCC", URI: ""},
		{NFTokenID: "00DDD", URI: services.StringToHex("https://meta.example/d")},
	}
	ledger.On("AccountNFTs", "rAlice", 400).Return(nfts, nil)
	ledger.On("NetworkName").Return("Testnet")

	fetcher.On("FetchJSON", "https://meta.example/a", mock.Anything).
		Return(fillMetadata(models.NFTMetadata{Name: "A"}), nil)
	fetcher.On("FetchJSON", "https://meta.example/b", mock.Anything).
		Return(fillMetadata(models.NFTMetadata{Name: "B"}), nil)
	fetcher.On("FetchJSON", "https://meta.example/d", mock.Anything).
		Return(fillMetadata(models.NFTMetadata{Name: "D"}), nil)

	svc := newTestHoldingsService(ledger, fetcher)
	holdings, err := svc.ListHoldings(context.Background(), "rAlice")

	assert.NoError(t, err)
	assert.Len(t, holdings, 4)
	assert.Equal(t, "00AAA", holdings[0].NFTokenID)
	assert.Equal(t, "A", holdings[0].Metadata.Name)
	assert.Equal(t, "B", holdings[1].Metadata.Name)
	assert.Nil(t, holdings[2].Metadata)
	assert.Empty(t, holdings[2].Error)
	assert.Equal(t, "D", holdings[3].Metadata.Name)
	assert.Equal(t, "Testnet", holdings[0].Network)
}

// TestListHoldingsInvalidURI verifica que uma URI não decodificável marca a
// entrada com erro sem tentar nenhum fetch.
func TestListHoldingsInvalidURI(t *testing.T) {
	ledger := new(MockLedger)
	fetcher := new(MockFetcher)

	ledger.On("AccountNFTs", "rAlice", 400).
		Return([]models.AccountNFT{{NFTokenID: "00AAA", URI: "ZZNOTHEX"}}, nil)
	ledger.On("NetworkName").Return("Testnet")

	svc := newTestHoldingsService(ledger, fetcher)
	holdings, err := svc.ListHoldings(context.Background(), "rAlice")

	assert.NoError(t, err)
	assert.Len(t, holdings, 1)
	assert.Nil(t, holdings[0].Metadata)
	assert.Equal(t, "formato de URI inválido", holdings[0].Error)
	fetcher.AssertNotCalled(t, "FetchJSON", mock.Anything, mock.Anything)
}

// TestListHoldingsGatewayFallback verifica a ordem dos gateways: o primeiro
// esgota suas retentativas antes do segundo ser consultado.
func TestListHoldingsGatewayFallback(t *testing.T) {
	ledger := new(MockLedger)
	fetcher := new(MockFetcher)

	ledger.On("AccountNFTs", "rAlice", 400).
		Return([]models.AccountNFT{{NFTokenID: "00AAA", URI: services.StringToHex("ipfs://Qmhash1")}}, nil)
	ledger.On("NetworkName").Return("Testnet")

	fetcher.On("FetchJSON", "https://gw1/ipfs/Qmhash1", mock.Anything).
		Return(nil, assert.AnError).Times(2)
	fetcher.On("FetchJSON", "https://gw2/ipfs/Qmhash1", mock.Anything).
		Return(fillMetadata(models.NFTMetadata{Name: "Resgatado"}), nil).Once()

	svc := newTestHoldingsService(ledger, fetcher)
	holdings, err := svc.ListHoldings(context.Background(), "rAlice")

	assert.NoError(t, err)
	assert.Equal(t, "Resgatado", holdings[0].Metadata.Name)
	assert.Empty(t, holdings[0].Error)
	fetcher.AssertExpectations(t)
}

// TestListHoldingsAllGatewaysFail verifica que o esgotamento de todos os
// gateways marca a entrada com o último erro, sem abortar a listagem.
func TestListHoldingsAllGatewaysFail(t *testing.T) {
	ledger := new(MockLedger)
	fetcher := new(MockFetcher)

	ledger.On("AccountNFTs", "rAlice", 400).
		Return([]models.AccountNFT{{NFTokenID: "00AAA", URI: services.StringToHex("ipfs://Qmhash1")}}, nil)
	ledger.On("NetworkName").Return("Testnet")

	fetcher.On("FetchJSON", mock.Anything, mock.Anything).
		Return(nil, assert.AnError)

	svc := newTestHoldingsService(ledger, fetcher)
	holdings, err := svc.ListHoldings(context.Background(), "rAlice")

	assert.NoError(t, err)
	assert.Nil(t, holdings[0].Metadata)
	assert.NotEmpty(t, holdings[0].Error)
	// 2 gateways × 2 tentativas cada
	fetcher.AssertNumberOfCalls(t, "FetchJSON", 4)
}

// TestListHoldingsUnsupportedScheme verifica o erro para esquemas de URI
// desconhecidos.
func TestListHoldingsUnsupportedScheme(t *testing.T) {
	ledger := new(MockLedger)
	fetcher := new(MockFetcher)

	ledger.On("AccountNFTs", "rAlice", 400).
		Return([]models.AccountNFT{{NFTokenID: "00AAA", URI: services.StringToHex("ftp://meta.example/a")}}, nil)
	ledger.On("NetworkName").Return("Testnet")

	svc := newTestHoldingsService(ledger, fetcher)
	holdings, err := svc.ListHoldings(context.Background(), "rAlice")

	assert.NoError(t, err)
	assert.Contains(t, holdings[0].Error, "formato de URI não suportado")
	fetcher.AssertNotCalled(t, "FetchJSON", mock.Anything, mock.Anything)
}

// TestListHoldingsRewritesImageURL verifica que imagens ipfs:// na metadata
// são reescritas para o gateway preferencial.
func TestListHoldingsRewritesImageURL(t *testing.T) {
	ledger := new(MockLedger)
	fetcher := new(MockFetcher)

	ledger.On("AccountNFTs", "rAlice", 400).
		Return([]models.AccountNFT{{NFTokenID: "00AAA", URI: services.StringToHex("https://meta.example/a")}}, nil)
	ledger.On("NetworkName").Return("Testnet")

	fetcher.On("FetchJSON", "https://meta.example/a", mock.Anything).
		Return(fillMetadata(models.NFTMetadata{Name: "A", Image: "ipfs://Qmimg"}), nil)

	svc := newTestHoldingsService(ledger, fetcher)
	holdings, err := svc.ListHoldings(context.Background(), "rAlice")

	assert.NoError(t, err)
	assert.Equal(t, "https://gw1/ipfs/Qmimg", holdings[0].Metadata.Image)
}
