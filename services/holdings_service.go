package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/yebtimotheous/gnx/models"
)

// JSONFetcher busca um documento JSON em uma URL.
type JSONFetcher interface {
	FetchJSON(ctx context.Context, url string, out interface{}) error
}

// HTTPJSONFetcher é a implementação padrão sobre net/http.
type HTTPJSONFetcher struct {
	Client *http.Client
}

// NewHTTPJSONFetcher cria o fetcher com timeout de 5s por requisição.
func NewHTTPJSONFetcher() *HTTPJSONFetcher {
	return &HTTPJSONFetcher{Client: &http.Client{Timeout: 5 * time.Second}}
}

func (f *HTTPJSONFetcher) FetchJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status HTTP inesperado: %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// HoldingsService materializa a coleção de uma conta: lista os NFTs na
// ledger, decodifica as URIs e resolve a metadata em lotes, respeitando os
// limites de taxa dos gateways.
type HoldingsService struct {
	Ledger  LedgerGateway
	Fetcher JSONFetcher

	Gateways   []string
	PageLimit  int
	BatchSize  int
	BatchDelay time.Duration
	FetchRetry RetryPolicy
}

// NewHoldingsService cria o serviço com os limites padrão: página de 400
// tokens, lotes de 5 com 1s entre lotes, 3 tentativas por fetch com atraso
// linear de 1s.
func NewHoldingsService(ledger LedgerGateway, fetcher JSONFetcher) *HoldingsService {
	return &HoldingsService{
		Ledger:     ledger,
		Fetcher:    fetcher,
		Gateways:   IPFSGateways,
		PageLimit:  400,
		BatchSize:  5,
		BatchDelay: time.Second,
		FetchRetry: LinearRetry(3, time.Second),
	}
}

// ListHoldings devolve a coleção completa da conta, na ordem da ledger. A
// falha de um único token nunca aborta a listagem: a entrada sai com
// metadata nula e o campo de erro preenchido.
func (s *HoldingsService) ListHoldings(ctx context.Context, account string) ([]models.Holding, error) {
	nfts, err := s.Ledger.AccountNFTs(ctx, account, s.PageLimit)
	if err != nil {
		return nil, fmt.Errorf("falha ao listar NFTs da conta %s: %w", account, err)
	}
	log.Printf("Encontrados %d NFTs para a conta %s", len(nfts), account)

	network := s.Ledger.NetworkName()
	holdings := make([]models.Holding, len(nfts))

	for start := 0; start < len(nfts); start += s.BatchSize {
		end := start + s.BatchSize
		if end > len(nfts) {
			end = len(nfts)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				holdings[i] = s.processNFT(ctx, nfts[i], network)
			}(i)
		}
		wg.Wait()

		// Atraso estritamente entre lotes, nunca após o último.
		if end < len(nfts) {
			if err := sleepCtx(ctx, s.BatchDelay); err != nil {
				return nil, err
			}
		}
	}
	return holdings, nil
}

func (s *HoldingsService) processNFT(ctx context.Context, nft models.AccountNFT, network string) models.Holding {
	holding := models.Holding{AccountNFT: nft, Network: network}

	// Um token pode legitimamente não ter metadata.
	if nft.URI == "" {
		return holding
	}

	decoded := HexToString(nft.URI)
	if decoded == "" {
		holding.Error = "formato de URI inválido"
		return holding
	}
	holding.DecodedURI = decoded

	var metadata *models.NFTMetadata
	var err error
	switch {
	case strings.HasPrefix(decoded, "ipfs://") || strings.HasPrefix(decoded, "Qm"):
		metadata, err = s.fetchIPFSMetadata(ctx, strings.TrimPrefix(decoded, "ipfs://"))
	case strings.HasPrefix(decoded, "http"):
		metadata, err = s.fetchMetadata(ctx, decoded)
	default:
		holding.Error = fmt.Sprintf("formato de URI não suportado: %s", decoded)
		return holding
	}
	if err != nil {
		holding.Error = err.Error()
		return holding
	}

	// Reescreve a imagem ipfs:// para uma URL de gateway exibível.
	if metadata != nil && strings.HasPrefix(metadata.Image, "ipfs://") {
		metadata.Image = s.Gateways[0] + strings.TrimPrefix(metadata.Image, "ipfs://")
	}
	holding.Metadata = metadata
	return holding
}

// fetchIPFSMetadata tenta cada gateway em ordem, cada um com sua própria
// rodada de retentativas; o primeiro a responder vence.
func (s *HoldingsService) fetchIPFSMetadata(ctx context.Context, ipfsHash string) (*models.NFTMetadata, error) {
	var lastErr error
	for _, gateway := range s.Gateways {
		metadata, err := s.fetchMetadata(ctx, gateway+ipfsHash)
		if err == nil {
			return metadata, nil
		}
		log.Printf("Falha ao buscar metadata em %s: %v", gateway, err)
		lastErr = err
	}
	return nil, lastErr
}

func (s *HoldingsService) fetchMetadata(ctx context.Context, url string) (*models.NFTMetadata, error) {
	var metadata models.NFTMetadata
	err := s.FetchRetry.Execute(ctx, func() error {
		metadata = models.NFTMetadata{}
		return s.Fetcher.FetchJSON(ctx, url, &metadata)
	})
	if err != nil {
		return nil, err
	}
	return &metadata, nil
}
