package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Minutos até um payload do XUMM expirar sem ação do usuário.
const payloadExpireMinutes = 5

// SigningRequest é um pedido de assinatura criado no XUMM, com a URL que o
// usuário abre no aplicativo da carteira.
type SigningRequest struct {
	UUID      string `json:"uuid"`
	URL       string `json:"url"`
	QRCodeURL string `json:"qr_url,omitempty"`
}

// SigningStatus é o estado de um payload: resolvido (assinado ou recusado),
// expirado ou ainda pendente.
type SigningStatus struct {
	Resolved bool   `json:"resolved"`
	Signed   bool   `json:"signed"`
	Expired  bool   `json:"expired"`
	TxID     string `json:"txid,omitempty"`
	Account  string `json:"account,omitempty"`
}

// SigningGateway é a capacidade de assinatura remota consumida pelo fluxo.
type SigningGateway interface {
	CreateRequest(ctx context.Context, txjson map[string]interface{}, returnURL string) (*SigningRequest, error)
	CreateSignInRequest(ctx context.Context, returnURL string) (*SigningRequest, error)
	GetStatus(ctx context.Context, uuid string) (*SigningStatus, error)
}

// XummService fala com a API REST do XUMM para criar payloads de assinatura
// e consultar sua resolução.
type XummService struct {
	apiKey    string
	apiSecret string
	baseURL   string
	client    *http.Client
}

// NewXummService valida as credenciais e cria o serviço.
func NewXummService(apiKey, apiSecret string) (*XummService, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, errors.New("credenciais do XUMM ausentes")
	}
	return &XummService{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   "https://xumm.app/api/v1",
		client:    &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// CreateRequest cria um payload de assinatura para uma transação já preparada.
// O XUMM submete a transação à ledger após a assinatura (submit=true).
func (s *XummService) CreateRequest(ctx context.Context, txjson map[string]interface{}, returnURL string) (*SigningRequest, error) {
	body := map[string]interface{}{
		"txjson": txjson,
		"options": map[string]interface{}{
			"submit": true,
			"expire": payloadExpireMinutes,
			"return_url": map[string]string{
				"web": returnURL,
			},
		},
	}
	return s.createPayload(ctx, body)
}

// CreateSignInRequest cria o payload SignIn usado para conectar uma carteira.
func (s *XummService) CreateSignInRequest(ctx context.Context, returnURL string) (*SigningRequest, error) {
	body := map[string]interface{}{
		"txjson": map[string]interface{}{
			"TransactionType": "SignIn",
		},
		"options": map[string]interface{}{
			"return_url": map[string]string{
				"web": returnURL,
			},
		},
	}
	return s.createPayload(ctx, body)
}

func (s *XummService) createPayload(ctx context.Context, body map[string]interface{}) (*SigningRequest, error) {
	raw, err := s.do(ctx, http.MethodPost, "/platform/payload", body)
	if err != nil {
		return nil, fmt.Errorf("falha ao criar payload no XUMM: %w", err)
	}

	var payload struct {
		UUID string `json:"uuid"`
		Next struct {
			Always string `json:"always"`
		} `json:"next"`
		Refs struct {
			QRPng string `json:"qr_png"`
		} `json:"refs"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("falha ao decodificar payload do XUMM: %w", err)
	}
	if payload.UUID == "" || payload.Next.Always == "" {
		return nil, errors.New("resposta de payload inválida do XUMM")
	}
	return &SigningRequest{
		UUID:      payload.UUID,
		URL:       payload.Next.Always,
		QRCodeURL: payload.Refs.QRPng,
	}, nil
}

// GetStatus consulta a resolução de um payload pelo UUID.
func (s *XummService) GetStatus(ctx context.Context, uuid string) (*SigningStatus, error) {
	raw, err := s.do(ctx, http.MethodGet, "/platform/payload/"+uuid, nil)
	if err != nil {
		return nil, fmt.Errorf("falha ao consultar payload %s: %w", uuid, err)
	}

	var payload struct {
		Meta struct {
			Resolved bool `json:"resolved"`
			Signed   bool `json:"signed"`
			Expired  bool `json:"expired"`
		} `json:"meta"`
		Response struct {
			TxID    string `json:"txid"`
			Account string `json:"account"`
		} `json:"response"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("falha ao decodificar status do payload: %w", err)
	}
	return &SigningStatus{
		Resolved: payload.Meta.Resolved,
		Signed:   payload.Meta.Signed,
		Expired:  payload.Meta.Expired,
		TxID:     payload.Response.TxID,
		Account:  payload.Response.Account,
	}, nil
}

func (s *XummService) do(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("falha ao codificar corpo da requisição: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-Key", s.apiKey)
	req.Header.Set("X-API-Secret", s.apiSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("XUMM respondeu %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}
