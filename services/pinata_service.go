package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"
)

// PinResult é o identificador de conteúdo devolvido pelo serviço de pinning,
// com uma URL de gateway para visualização imediata.
type PinResult struct {
	IpfsHash  string `json:"ipfs_hash"`
	PinSize   int64  `json:"pin_size"`
	Timestamp string `json:"timestamp"`
	URL       string `json:"url"`
}

// PinEntry é uma entrada da listagem de pins.
type PinEntry struct {
	IpfsPinHash string `json:"ipfs_pin_hash"`
	Size        int64  `json:"size"`
	DatePinned  string `json:"date_pinned"`
}

// Pinner é a capacidade de armazenamento endereçado por conteúdo consumida
// pelo orquestrador de cunhagem.
type Pinner interface {
	UploadFile(ctx context.Context, filename, contentType string, data []byte) (*PinResult, error)
	UploadJSON(ctx context.Context, name string, doc interface{}) (*PinResult, error)
}

// PinataService fala com a API REST do Pinata para fixar imagens e metadata
// no IPFS.
type PinataService struct {
	baseURL string
	jwt     string
	client  *http.Client
}

// NewPinataService valida o token e cria o serviço.
func NewPinataService(jwt string) (*PinataService, error) {
	if jwt == "" {
		return nil, errors.New("token JWT do Pinata ausente")
	}
	return &PinataService{
		baseURL: "https://api.pinata.cloud",
		jwt:     jwt,
		client:  &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// TestAuthentication verifica as credenciais contra a API.
func (s *PinataService) TestAuthentication(ctx context.Context) error {
	_, err := s.doRaw(ctx, http.MethodGet, "/data/testAuthentication", "", nil)
	if err != nil {
		return fmt.Errorf("falha ao autenticar no Pinata: %w", err)
	}
	return nil
}

// UploadFile fixa um arquivo no IPFS e devolve seu identificador de conteúdo.
func (s *PinataService) UploadFile(ctx context.Context, filename, contentType string, data []byte) (*PinResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("falha ao montar formulário de upload: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("falha ao escrever arquivo no formulário: %w", err)
	}

	metadata, err := json.Marshal(map[string]interface{}{
		"name": filename,
		"keyvalues": map[string]string{
			"type":        "nft-image",
			"contentType": contentType,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("falha ao codificar pinataMetadata: %w", err)
	}
	if err := writer.WriteField("pinataMetadata", string(metadata)); err != nil {
		return nil, fmt.Errorf("falha ao anexar pinataMetadata: %w", err)
	}
	if err := writer.WriteField("pinataOptions", `{"cidVersion":1,"wrapWithDirectory":false}`); err != nil {
		return nil, fmt.Errorf("falha ao anexar pinataOptions: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("falha ao finalizar formulário: %w", err)
	}

	raw, err := s.doRaw(ctx, http.MethodPost, "/pinning/pinFileToIPFS", writer.FormDataContentType(), &body)
	if err != nil {
		return nil, fmt.Errorf("falha ao fixar arquivo no IPFS: %w", err)
	}
	return s.decodePinResult(raw)
}

// UploadJSON fixa um documento JSON no IPFS.
func (s *PinataService) UploadJSON(ctx context.Context, name string, doc interface{}) (*PinResult, error) {
	body, err := json.Marshal(map[string]interface{}{
		"pinataContent": doc,
		"pinataMetadata": map[string]interface{}{
			"name": name + "-metadata",
			"keyvalues": map[string]string{
				"type":      "nft-metadata",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			},
		},
		"pinataOptions": map[string]interface{}{
			"cidVersion":        1,
			"wrapWithDirectory": false,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("falha ao codificar metadata: %w", err)
	}

	raw, err := s.doRaw(ctx, http.MethodPost, "/pinning/pinJSONToIPFS", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("falha ao fixar JSON no IPFS: %w", err)
	}
	return s.decodePinResult(raw)
}

// GetPinList lista o conteúdo fixado pela conta.
func (s *PinataService) GetPinList(ctx context.Context) ([]PinEntry, error) {
	raw, err := s.doRaw(ctx, http.MethodGet, "/data/pinList", "", nil)
	if err != nil {
		return nil, fmt.Errorf("falha ao listar pins: %w", err)
	}
	var result struct {
		Rows []PinEntry `json:"rows"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("falha ao decodificar lista de pins: %w", err)
	}
	return result.Rows, nil
}

// Unpin remove um conteúdo fixado. Não há coleta automática de conteúdo
// órfão: este método existe para limpeza manual.
func (s *PinataService) Unpin(ctx context.Context, hash string) error {
	if _, err := s.doRaw(ctx, http.MethodDelete, "/pinning/unpin/"+hash, "", nil); err != nil {
		return fmt.Errorf("falha ao remover pin %s: %w", hash, err)
	}
	return nil
}

func (s *PinataService) decodePinResult(raw []byte) (*PinResult, error) {
	var result struct {
		IpfsHash  string `json:"IpfsHash"`
		PinSize   int64  `json:"PinSize"`
		Timestamp string `json:"Timestamp"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("falha ao decodificar resposta do Pinata: %w", err)
	}
	if result.IpfsHash == "" {
		return nil, errors.New("resposta do Pinata sem identificador de conteúdo")
	}
	return &PinResult{
		IpfsHash:  result.IpfsHash,
		PinSize:   result.PinSize,
		Timestamp: result.Timestamp,
		URL:       IPFSGateways[0] + result.IpfsHash,
	}, nil
}

func (s *PinataService) doRaw(ctx context.Context, method, path, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.jwt)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

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
		return nil, fmt.Errorf("Pinata respondeu %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}
