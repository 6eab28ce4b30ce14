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

func newTestOfferService(ledger services.LedgerGateway, signer services.SignatureRequester, waiter services.Validator) *services.OfferService {
	svc := services.NewOfferService(ledger, signer, waiter)
	svc.SettleDelay = time.Millisecond
	svc.StatusInterval = time.Millisecond
	return svc
}

// metaWithCreatedOffer monta a metadata de validação com uma oferta criada.
func metaWithCreatedOffer(offerIndex string) *models.TxMeta {
	return &models.TxMeta{
		AffectedNodes: []models.AffectedNode{
			{CreatedNode: &models.LedgerNode{
				LedgerEntryType: "NFTokenOffer",
				LedgerIndex:     offerIndex,
			}},
		},
	}
}

// TestCreateSellOfferWithoutExisting verifica a criação direta: nenhum
// cancelamento é emitido quando não há oferta anterior.
func TestCreateSellOfferWithoutExisting(t *testing.T) {
	ledger := new(MockLedger)
	signer := new(MockSigner)
	waiter := new(MockWaiter)

	ledger.On("Autofill", mock.MatchedBy(func(tx map[string]interface{}) bool {
		return tx["TransactionType"] == "NFTokenCreateOffer" &&
			tx["Amount"] == "1000000" &&
			tx["Flags"] == services.FlagSellToken
	})).Return(map[string]interface{}{}, nil)
	signer.On("RequestSignature", mock.Anything).
		Return(&services.SigningOutcome{Signed: true, TxID: "SELLHASH"}, nil)
	waiter.On("AwaitValidation", "SELLHASH").
		Return(&models.TxResult{Validated: true, Meta: metaWithCreatedOffer("OFFER1")}, nil)

	svc := newTestOfferService(ledger, signer, waiter)
	result, err := svc.CreateOrUpdateSellOffer(context.Background(), "rAlice", "00TOKEN", "1000000", "")

	assert.NoError(t, err)
	assert.Equal(t, "OFFER1", result.OfferIndex)
	assert.True(t, result.Validated)
	signer.AssertNumberOfCalls(t, "RequestSignature", 1)
}

// TestUpdateSellOfferCancelsFirst verifica a sequência de atualização:
// cancelamento validado, intervalo de assentamento e nova oferta com índice
// distinto do anterior.
func TestUpdateSellOfferCancelsFirst(t *testing.T) {
	ledger := new(MockLedger)
	signer := new(MockSigner)
	waiter := new(MockWaiter)

	ledger.On("Autofill", mock.MatchedBy(func(tx map[string]interface{}) bool {
		return tx["TransactionType"] == "NFTokenCancelOffer"
	})).Return(map[string]interface{}{"TransactionType": "NFTokenCancelOffer"}, nil).Once()
	ledger.On("Autofill", mock.MatchedBy(func(tx map[string]interface{}) bool {
		return tx["TransactionType"] == "NFTokenCreateOffer"
	})).Return(map[string]interface{}{"TransactionType": "NFTokenCreateOffer"}, nil).Once()

	signer.On("RequestSignature", mock.MatchedBy(func(tx map[string]interface{}) bool {
		return tx["TransactionType"] == "NFTokenCancelOffer"
	})).Return(&services.SigningOutcome{Signed: true, TxID: "CANCELHASH"}, nil).Once()
	signer.On("RequestSignature", mock.MatchedBy(func(tx map[string]interface{}) bool {
		return tx["TransactionType"] == "NFTokenCreateOffer"
	})).Return(&services.SigningOutcome{Signed: true, TxID: "SELLHASH"}, nil).Once()

	waiter.On("AwaitValidation", "CANCELHASH").
		Return(&models.TxResult{Validated: true, Meta: &models.TxMeta{}}, nil)
	waiter.On("AwaitValidation", "SELLHASH").
		Return(&models.TxResult{Validated: true, Meta: metaWithCreatedOffer("OFFER2")}, nil)

	svc := newTestOfferService(ledger, signer, waiter)
	result, err := svc.CreateOrUpdateSellOffer(context.Background(), "rAlice", "00TOKEN", "2000000", "OFFER1")

	assert.NoError(t, err)
	assert.Equal(t, "OFFER2", result.OfferIndex)
	assert.NotEqual(t, "OFFER1", result.OfferIndex)
	signer.AssertNumberOfCalls(t, "RequestSignature", 2)
}

// TestUpdateSellOfferAbortsWhenCancelFails verifica que a falha no
// cancelamento impede a criação da nova oferta.
func TestUpdateSellOfferAbortsWhenCancelFails(t *testing.T) {
	ledger := new(MockLedger)
	signer := new(MockSigner)
	waiter := new(MockWaiter)

	ledger.On("Autofill", mock.Anything).
		Return(map[string]interface{}{}, nil)
	signer.On("RequestSignature", mock.Anything).
		Return(&services.SigningOutcome{Signed: false}, nil).Once()

	svc := newTestOfferService(ledger, signer, waiter)
	result, err := svc.CreateOrUpdateSellOffer(context.Background(), "rAlice", "00TOKEN", "2000000", "OFFER1")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, services.ErrOfferCancelFailed)
	signer.AssertNumberOfCalls(t, "RequestSignature", 1)
}

// TestTransferNFTBuildsZeroValueOffer verifica a transferência: oferta de
// valor zero restrita ao destinatário.
func TestTransferNFTBuildsZeroValueOffer(t *testing.T) {
	ledger := new(MockLedger)
	signer := new(MockSigner)
	waiter := new(MockWaiter)

	ledger.On("Autofill", mock.MatchedBy(func(tx map[string]interface{}) bool {
		return tx["Amount"] == "0" && tx["Destination"] == "rBob"
	})).Return(map[string]interface{}{}, nil)
	signer.On("RequestSignature", mock.Anything).
		Return(&services.SigningOutcome{Signed: true, TxID: "TRANSFERHASH"}, nil)
	waiter.On("AwaitValidation", "TRANSFERHASH").
		Return(&models.TxResult{Validated: true, Meta: metaWithCreatedOffer("OFFER3")}, nil)

	svc := newTestOfferService(ledger, signer, waiter)
	result, err := svc.TransferNFT(context.Background(), "rAlice", "00TOKEN", "rBob")

	assert.NoError(t, err)
	assert.Equal(t, "OFFER3", result.OfferIndex)
	ledger.AssertExpectations(t)
}

// TestResolveOfferStatusFound verifica que a primeira oferta da lista define
// o estado de listagem.
func TestResolveOfferStatusFound(t *testing.T) {
	ledger := new(MockLedger)
	ledger.On("NFTSellOffers", "00TOKEN").
		Return([]models.NFTOffer{
			{Amount: "5000000", NFTOfferIndex: "OFFERA", Owner: "rAlice"},
			{Amount: "9000000", NFTOfferIndex: "OFFERB", Owner: "rCarol"},
		}, nil)

	svc := newTestOfferService(ledger, new(MockSigner), new(MockWaiter))
	status, err := svc.ResolveOfferStatus(context.Background(), "TOKEN")

	assert.NoError(t, err)
	assert.True(t, status.IsOnSale)
	assert.Equal(t, "5000000", status.Price)
	assert.Equal(t, "OFFERA", status.OfferIndex)
	assert.Equal(t, "rAlice", status.Seller)
}

// TestResolveOfferStatusNotOnSale verifica que o esgotamento das tentativas
// sem ofertas devolve IsOnSale=false sem erro.
func TestResolveOfferStatusNotOnSale(t *testing.T) {
	ledger := new(MockLedger)
	ledger.On("NFTSellOffers", "00TOKEN").
		Return([]models.NFTOffer{}, nil)

	svc := newTestOfferService(ledger, new(MockSigner), new(MockWaiter))
	status, err := svc.ResolveOfferStatus(context.Background(), "TOKEN")

	assert.NoError(t, err)
	assert.False(t, status.IsOnSale)
	ledger.AssertNumberOfCalls(t, "NFTSellOffers", 5)
}

// TestResolveOfferStatusFoldsNotFound verifica que erros "não encontrado" são
// dobrados no resultado benigno.
func TestResolveOfferStatusFoldsNotFound(t *testing.T) {
	ledger := new(MockLedger)
	ledger.On("NFTSellOffers", "00TOKEN").
		Return(nil, &services.LedgerError{Code: "objectNotFound"})

	svc := newTestOfferService(ledger, new(MockSigner), new(MockWaiter))
	status, err := svc.ResolveOfferStatus(context.Background(), "TOKEN")

	assert.NoError(t, err)
	assert.False(t, status.IsOnSale)
}

// TestGetNFTOffersFoldsNotFound verifica que a listagem devolve listas vazias
// quando a ledger não conhece o token.
func TestGetNFTOffersFoldsNotFound(t *testing.T) {
	ledger := new(MockLedger)
	ledger.On("NFTSellOffers", "00TOKEN").
		Return(nil, &services.LedgerError{Code: "objectNotFound"})
	ledger.On("NFTBuyOffers", "00TOKEN").
		Return([]models.NFTOffer{{Amount: "100", NFTOfferIndex: "BUY1"}}, nil)

	svc := newTestOfferService(ledger, new(MockSigner), new(MockWaiter))
	sell, buy, err := svc.GetNFTOffers(context.Background(), "TOKEN")

	assert.NoError(t, err)
	assert.Empty(t, sell)
	assert.Len(t, buy, 1)
}

// TestAcceptBuyOfferNoOffers verifica o erro quando não há oferta de compra.
func TestAcceptBuyOfferNoOffers(t *testing.T) {
	ledger := new(MockLedger)
	ledger.On("NFTBuyOffers", "00TOKEN").
		Return([]models.NFTOffer{}, nil)

	svc := newTestOfferService(ledger, new(MockSigner), new(MockWaiter))
	result, err := svc.AcceptBuyOffer(context.Background(), "rAlice", "TOKEN")

	assert.Nil(t, result)
	assert.Error(t, err)
}
