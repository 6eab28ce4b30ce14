package services

import (
	"context"
	"fmt"
	"log"
	"time"
)

// SigningOutcome é o desfecho de um pedido de assinatura resolvido: assinado
// (com o hash da transação submetida) ou recusado pelo usuário.
type SigningOutcome struct {
	Signed  bool
	TxID    string
	Account string
}

// SignatureRequester é a capacidade consumida pelos orquestradores para obter
// a assinatura de uma transação já preparada.
type SignatureRequester interface {
	RequestSignature(ctx context.Context, txjson map[string]interface{}) (*SigningOutcome, error)
}

// SigningFlow coordena o handshake de assinatura: cria o payload no gateway,
// expõe a URL de autorização exatamente uma vez e consulta a resolução em
// intervalo fixo até assinar, recusar, expirar ou estourar o teto de tempo.
type SigningFlow struct {
	Gateway   SigningGateway
	ReturnURL string

	// OpenURL é o efeito colateral que apresenta a superfície de assinatura ao
	// usuário (deep-link, janela). É chamado uma única vez por pedido.
	OpenURL func(url string)

	PollInterval time.Duration
	Timeout      time.Duration
}

// NewSigningFlow cria o fluxo com os intervalos padrão (3s de poll, 60s de teto).
func NewSigningFlow(gateway SigningGateway, returnURL string) *SigningFlow {
	return &SigningFlow{
		Gateway:   gateway,
		ReturnURL: returnURL,
		OpenURL: func(url string) {
			log.Printf("Aguardando assinatura do usuário em: %s", url)
		},
		PollInterval: 3 * time.Second,
		Timeout:      60 * time.Second,
	}
}

// RequestSignature submete o txjson ao gateway e aguarda a resolução.
// Erros transitórios de consulta não interrompem o laço; o cancelamento do
// contexto libera o timer e não devolve estado parcial.
func (f *SigningFlow) RequestSignature(ctx context.Context, txjson map[string]interface{}) (*SigningOutcome, error) {
	request, err := f.Gateway.CreateRequest(ctx, txjson, f.ReturnURL)
	if err != nil {
		return nil, fmt.Errorf("falha ao criar pedido de assinatura: %w", err)
	}
	if f.OpenURL != nil {
		f.OpenURL(request.URL)
	}

	ticker := time.NewTicker(f.PollInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(f.Timeout)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, ErrSigningTimeout
		case <-ticker.C:
			status, err := f.Gateway.GetStatus(ctx, request.UUID)
			if err != nil {
				log.Printf("Erro ao verificar status da assinatura %s: %v", request.UUID, err)
				continue
			}
			if status.Resolved {
				return &SigningOutcome{
					Signed:  status.Signed,
					TxID:    status.TxID,
					Account: status.Account,
				}, nil
			}
			if status.Expired {
				return nil, ErrSigningExpired
			}
		}
	}
}
