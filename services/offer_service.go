package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yebtimotheous/gnx/models"
)

// OfferResult é o desfecho de uma operação de oferta validada na ledger.
type OfferResult struct {
	Hash       string `json:"hash"`
	Validated  bool   `json:"validated"`
	OfferIndex string `json:"offer_index,omitempty"`
}

// OfferService gerencia o ciclo de vida das ofertas: criação e atualização de
// ofertas de venda, cancelamento, transferência via oferta de valor zero e a
// resolução do estado de listagem de um token.
type OfferService struct {
	Ledger LedgerGateway
	Signer SignatureRequester
	Waiter Validator

	// Intervalo entre cancelar a oferta anterior e criar a substituta.
	SettleDelay time.Duration

	StatusAttempts int
	StatusInterval time.Duration
}

// NewOfferService cria o serviço com os limites padrão (settle 1s, status 5×3s).
func NewOfferService(ledger LedgerGateway, signer SignatureRequester, waiter Validator) *OfferService {
	return &OfferService{
		Ledger:         ledger,
		Signer:         signer,
		Waiter:         waiter,
		SettleDelay:    time.Second,
		StatusAttempts: 5,
		StatusInterval: 3 * time.Second,
	}
}

// signAndValidate preenche, assina e aguarda a validação de um txjson.
func (s *OfferService) signAndValidate(ctx context.Context, tx map[string]interface{}) (*models.TxResult, string, error) {
	prepared, err := s.Ledger.Autofill(ctx, tx)
	if err != nil {
		return nil, "", err
	}
	outcome, err := s.Signer.RequestSignature(ctx, prepared)
	if err != nil {
		return nil, "", err
	}
	if !outcome.Signed {
		return nil, "", ErrSigningRejected
	}
	validated, err := s.Waiter.AwaitValidation(ctx, outcome.TxID)
	if err != nil {
		return nil, "", err
	}
	return validated, outcome.TxID, nil
}

// CreateOrUpdateSellOffer cria uma oferta de venda pelo valor em drops. Com
// existingOfferIndex informado, cancela a oferta anterior primeiro (ciclo
// completo de assinatura e validação) e aguarda a ledger liberar o estado
// antes de criar a substituta. Se o cancelamento falha, nada é criado.
func (s *OfferService) CreateOrUpdateSellOffer(ctx context.Context, account, tokenID, amountDrops, existingOfferIndex string) (*OfferResult, error) {
	if existingOfferIndex != "" {
		if _, err := s.CancelOffer(ctx, account, existingOfferIndex); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOfferCancelFailed, err)
		}
		if err := sleepCtx(ctx, s.SettleDelay); err != nil {
			return nil, err
		}
	}

	log.Printf("Criando oferta de venda do NFT %s por %s drops", tokenID, amountDrops)
	offerTx := map[string]interface{}{
		"TransactionType": "NFTokenCreateOffer",
		"Account":         account,
		"NFTokenID":       tokenID,
		"Amount":          amountDrops,
		"Flags":           FlagSellToken,
	}
	validated, hash, err := s.signAndValidate(ctx, offerTx)
	if err != nil {
		return nil, err
	}

	offerIndex, ok := ExtractOfferIndex(validated.Meta)
	if !ok {
		return nil, ErrOfferIndexNotFound
	}
	return &OfferResult{Hash: hash, Validated: true, OfferIndex: offerIndex}, nil
}

// CancelOffer cancela uma oferta pelo índice. Sucesso significa "transação
// validada", não "oferta confirmada ausente" — o chamador pode reconsultar.
func (s *OfferService) CancelOffer(ctx context.Context, account, offerIndex string) (*OfferResult, error) {
	log.Printf("Cancelando oferta %s da conta %s", offerIndex, account)
	cancelTx := map[string]interface{}{
		"TransactionType": "NFTokenCancelOffer",
		"Account":         account,
		"NFTokenOffers":   []string{offerIndex},
	}
	_, hash, err := s.signAndValidate(ctx, cancelTx)
	if err != nil {
		return nil, err
	}
	return &OfferResult{Hash: hash, Validated: true}, nil
}

// TransferNFT modela a transferência direta como uma oferta de venda de valor
// zero restrita ao destino: apenas a conta nomeada pode aceitá-la.
func (s *OfferService) TransferNFT(ctx context.Context, account, tokenID, destination string) (*OfferResult, error) {
	log.Printf("Transferindo NFT %s para %s", tokenID, destination)
	transferTx := map[string]interface{}{
		"TransactionType": "NFTokenCreateOffer",
		"Account":         account,
		"NFTokenID":       tokenID,
		"Amount":          "0",
		"Destination":     destination,
		"Flags":           FlagSellToken,
	}
	validated, hash, err := s.signAndValidate(ctx, transferTx)
	if err != nil {
		return nil, err
	}

	offerIndex, ok := ExtractOfferIndex(validated.Meta)
	if !ok {
		return nil, ErrOfferIndexNotFound
	}
	return &OfferResult{Hash: hash, Validated: true, OfferIndex: offerIndex}, nil
}

// AcceptBuyOffer aceita a primeira oferta de compra ativa do token.
func (s *OfferService) AcceptBuyOffer(ctx context.Context, account, tokenID string) (*OfferResult, error) {
	offers, err := s.Ledger.NFTBuyOffers(ctx, FormatNFTokenID(tokenID))
	if err != nil {
		return nil, fmt.Errorf("falha ao buscar ofertas de compra: %w", err)
	}
	if len(offers) == 0 {
		return nil, errors.New("nenhuma oferta de compra encontrada para este NFT")
	}

	acceptTx := map[string]interface{}{
		"TransactionType": "NFTokenAcceptOffer",
		"Account":         account,
		"NFTokenBuyOffer": offers[0].NFTOfferIndex,
	}
	_, hash, err := s.signAndValidate(ctx, acceptTx)
	if err != nil {
		return nil, err
	}
	return &OfferResult{Hash: hash, Validated: true}, nil
}

// GetNFTOffers lista ofertas de venda e compra do token, com retentativas
// exponenciais. Erros da classe "não encontrado" viram listas vazias.
func (s *OfferService) GetNFTOffers(ctx context.Context, tokenID string) (sell, buy []models.NFTOffer, err error) {
	formatted := FormatNFTokenID(tokenID)
	policy := ExponentialRetry(3, time.Second, 10*time.Second)

	err = policy.Execute(ctx, func() error {
		offers, reqErr := s.Ledger.NFTSellOffers(ctx, formatted)
		if reqErr != nil {
			if IsNotFound(reqErr) {
				sell = nil
				return nil
			}
			return reqErr
		}
		sell = offers
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("falha ao buscar ofertas de venda: %w", err)
	}

	err = policy.Execute(ctx, func() error {
		offers, reqErr := s.Ledger.NFTBuyOffers(ctx, formatted)
		if reqErr != nil {
			if IsNotFound(reqErr) {
				buy = nil
				return nil
			}
			return reqErr
		}
		buy = offers
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("falha ao buscar ofertas de compra: %w", err)
	}
	return sell, buy, nil
}

// ResolveOfferStatus calcula o estado de listagem de um token. A ausência de
// ofertas após todas as tentativas não é erro: IsOnSale=false é o caso comum,
// e erros de consulta também são dobrados nesse resultado.
func (s *OfferService) ResolveOfferStatus(ctx context.Context, tokenID string) (*models.OfferStatus, error) {
	formatted := FormatNFTokenID(tokenID)

	for attempt := 0; attempt < s.StatusAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, s.StatusInterval); err != nil {
				return nil, err
			}
		}

		offers, err := s.Ledger.NFTSellOffers(ctx, formatted)
		if err != nil {
			if !IsNotFound(err) {
				log.Printf("Erro ao consultar ofertas de %s: %v", formatted, err)
			}
			continue
		}
		if len(offers) > 0 {
			// Sem desempate documentado além da ordem da lista.
			first := offers[0]
			return &models.OfferStatus{
				IsOnSale:   true,
				Price:      first.Amount,
				OfferIndex: first.NFTOfferIndex,
				Seller:     first.Owner,
			}, nil
		}
	}
	return &models.OfferStatus{IsOnSale: false}, nil
}

// ExtractOfferIndex procura o índice da oferta criada na metadata de validação.
func ExtractOfferIndex(meta *models.TxMeta) (string, bool) {
	if meta == nil {
		return "", false
	}
	for _, node := range meta.AffectedNodes {
		if node.CreatedNode != nil && node.CreatedNode.LedgerEntryType == "NFTokenOffer" {
			return node.CreatedNode.LedgerIndex, true
		}
	}
	return "", false
}
