package services_test

import (
	"context"

	"github.com/yebtimotheous/gnx/models"
	"github.com/yebtimotheous/gnx/services"

	"github.com/stretchr/testify/mock"
)

// MockLedger é uma implementação mock do services.LedgerGateway para testes de unidade
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) AccountNFTs(ctx context.Context, account string, limit int) ([]models.AccountNFT, error) {
	args := m.Called(account, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AccountNFT), args.Error(1)
}
func (m *MockLedger) NFTSellOffers(ctx context.Context, nftID string) ([]models.NFTOffer, error) {
	args := m.Called(nftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.NFTOffer), args.Error(1)
}
func (m *MockLedger) NFTBuyOffers(ctx context.Context, nftID string) ([]models.NFTOffer, error) {
	args := m.Called(nftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.NFTOffer), args.Error(1)
}
func (m *MockLedger) Tx(ctx context.Context, hash string) (*models.TxResult, error) {
	args := m.Called(hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TxResult), args.Error(1)
}
func (m *MockLedger) Autofill(ctx context.Context, tx map[string]interface{}) (map[string]interface{}, error) {
	args := m.Called(tx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]interface{}), args.Error(1)
}
func (m *MockLedger) Submit(ctx context.Context, txBlob string) (*models.SubmitResult, error) {
	args := m.Called(txBlob)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubmitResult), args.Error(1)
}
func (m *MockLedger) NetworkName() string {
	args := m.Called()
	return args.String(0)
}

// MockPinner é uma implementação mock do services.Pinner
type MockPinner struct {
	mock.Mock
}

func (m *MockPinner) UploadFile(ctx context.Context, filename, contentType string, data []byte) (*services.PinResult, error) {
	args := m.Called(filename, contentType, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PinResult), args.Error(1)
}
func (m *MockPinner) UploadJSON(ctx context.Context, name string, doc interface{}) (*services.PinResult, error) {
	args := m.Called(name, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PinResult), args.Error(1)
}

// MockSigningGateway é uma implementação mock do services.SigningGateway
type MockSigningGateway struct {
	mock.Mock
}

func (m *MockSigningGateway) CreateRequest(ctx context.Context, txjson map[string]interface{}, returnURL string) (*services.SigningRequest, error) {
	args := m.Called(txjson, returnURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SigningRequest), args.Error(1)
}
func (m *MockSigningGateway) CreateSignInRequest(ctx context.Context, returnURL string) (*services.SigningRequest, error) {
	args := m.Called(returnURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SigningRequest), args.Error(1)
}
func (m *MockSigningGateway) GetStatus(ctx context.Context, uuid string) (*services.SigningStatus, error) {
	args := m.Called(uuid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SigningStatus), args.Error(1)
}

// MockSigner é uma implementação mock do services.SignatureRequester
type MockSigner struct {
	mock.Mock
}

func (m *MockSigner) RequestSignature(ctx context.Context, txjson map[string]interface{}) (*services.SigningOutcome, error) {
	args := m.Called(txjson)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SigningOutcome), args.Error(1)
}

// MockWaiter é uma implementação mock do services.Validator
type MockWaiter struct {
	mock.Mock
}

func (m *MockWaiter) AwaitValidation(ctx context.Context, txHash string) (*models.TxResult, error) {
	args := m.Called(txHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TxResult), args.Error(1)
}

// MockFetcher é uma implementação mock do services.JSONFetcher
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) FetchJSON(ctx context.Context, url string, out interface{}) error {
	args := m.Called(url, out)
	if fill, ok := args.Get(0).(func(interface{})); ok && fill != nil {
		fill(out)
	}
	return args.Error(1)
}
