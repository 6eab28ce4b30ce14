package services

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gorilla/websocket"

	"github.com/yebtimotheous/gnx/models"
)

// Endpoints websocket das redes XRPL suportadas.
var Networks = map[string]string{
	"MAINNET": "wss://xrplcluster.com",
	"TESTNET": "wss://s.altnet.rippletest.net:51233",
	"DEVNET":  "wss://s.devnet.rippletest.net:51233",
}

// Gateways IPFS em ordem de preferência para resolver metadata.
var IPFSGateways = []string{
	"https://gateway.pinata.cloud/ipfs/",
	"https://ipfs.io/ipfs/",
	"https://cloudflare-ipfs.com/ipfs/",
	"https://gateway.ipfs.io/ipfs/",
}

// NetworkNames lista as redes suportadas em ordem estável.
func NetworkNames() []string {
	names := make([]string, 0, len(Networks))
	for name := range Networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Flags de transações NFToken no XRPL.
const (
	FlagSellToken    = 1 // oferta de venda
	FlagTransferable = 8 // token transferível (cunhagem)
)

// LedgerGateway é a capacidade de ledger consumida pelos orquestradores.
// A implementação concreta é o XRPLService; os testes usam mocks.
type LedgerGateway interface {
	AccountNFTs(ctx context.Context, account string, limit int) ([]models.AccountNFT, error)
	NFTSellOffers(ctx context.Context, nftID string) ([]models.NFTOffer, error)
	NFTBuyOffers(ctx context.Context, nftID string) ([]models.NFTOffer, error)
	Tx(ctx context.Context, hash string) (*models.TxResult, error)
	Autofill(ctx context.Context, tx map[string]interface{}) (map[string]interface{}, error)
	Submit(ctx context.Context, txBlob string) (*models.SubmitResult, error)
	NetworkName() string
}

// rpcEnvelope é o envelope de resposta do protocolo websocket do XRPL.
type rpcEnvelope struct {
	ID           uint64          `json:"id"`
	Type         string          `json:"type"`
	Status       string          `json:"status"`
	Result       json.RawMessage `json:"result"`
	ErrorCode    string          `json:"error"`
	ErrorMessage string          `json:"error_message"`
}

// XRPLService encapsula a conexão websocket com a rede XRPL: conexão preguiçosa
// e idempotente, correlação requisição/resposta por id e helpers tipados para
// os comandos que o backend usa.
type XRPLService struct {
	mu      sync.Mutex // protege conn e network
	conn    *websocket.Conn
	network string

	writeMu sync.Mutex // serializa escritas no websocket

	pendMu  sync.Mutex
	pending map[uint64]chan rpcEnvelope
	nextID  uint64
}

// NewXRPLService cria o serviço apontando para uma das redes conhecidas.
// A conexão só é estabelecida no primeiro uso.
func NewXRPLService(network string) (*XRPLService, error) {
	if _, ok := Networks[network]; !ok {
		return nil, fmt.Errorf("rede XRPL desconhecida: %s", network)
	}
	return &XRPLService{
		network: network,
		pending: make(map[uint64]chan rpcEnvelope),
	}, nil
}

// NetworkName devolve o nome exibível da rede atual.
func (s *XRPLService) NetworkName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.network == "MAINNET" {
		return "Mainnet"
	}
	return "Testnet"
}

// SetNetwork troca a rede ativa, derrubando a conexão existente. A próxima
// requisição reconecta na nova rede.
func (s *XRPLService) SetNetwork(network string) error {
	if _, ok := Networks[network]; !ok {
		return fmt.Errorf("rede XRPL desconhecida: %s", network)
	}
	s.Disconnect()
	s.mu.Lock()
	s.network = network
	s.mu.Unlock()
	return nil
}

// Connect garante que há uma conexão ativa. Chamadas concorrentes recebem a
// mesma conexão: um cliente já conectado é devolvido como está.
func (s *XRPLService) Connect(ctx context.Context) error {
	_, err := s.ensureConnection(ctx)
	return err
}

func (s *XRPLService) ensureConnection(ctx context.Context) (*websocket.Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return s.conn, nil
	}

	endpoint := Networks[s.network]
	log.Printf("Conectando à rede XRPL: %s", endpoint)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar à rede XRPL: %w", err)
	}
	s.conn = conn
	go s.readLoop(conn)
	return conn, nil
}

// Disconnect derruba a conexão atual, se houver. Requisições pendentes falham.
func (s *XRPLService) Disconnect() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
}

// readLoop entrega respostas aos chamadores registrados. Mensagens de stream
// (type != "response") são ignoradas: o backend não mantém subscrições aqui.
func (s *XRPLService) readLoop(conn *websocket.Conn) {
	for {
		var env rpcEnvelope
		if err := conn.ReadJSON(&env); err != nil {
			s.mu.Lock()
			if s.conn == conn {
				s.conn = nil
			}
			s.mu.Unlock()
			s.failPending(err)
			return
		}
		if env.Type != "response" {
			continue
		}
		s.pendMu.Lock()
		ch, ok := s.pending[env.ID]
		if ok {
			delete(s.pending, env.ID)
		}
		s.pendMu.Unlock()
		if ok {
			ch <- env
		}
	}
}

func (s *XRPLService) failPending(err error) {
	s.pendMu.Lock()
	defer s.pendMu.Unlock()
	for id, ch := range s.pending {
		delete(s.pending, id)
		ch <- rpcEnvelope{Status: "error", ErrorCode: "connectionClosed", ErrorMessage: err.Error()}
	}
}

// Request envia um comando arbitrário e aguarda a resposta correlacionada.
func (s *XRPLService) Request(ctx context.Context, cmd map[string]interface{}) (json.RawMessage, error) {
	conn, err := s.ensureConnection(ctx)
	if err != nil {
		return nil, err
	}

	s.pendMu.Lock()
	s.nextID++
	id := s.nextID
	ch := make(chan rpcEnvelope, 1)
	s.pending[id] = ch
	s.pendMu.Unlock()

	msg := make(map[string]interface{}, len(cmd)+1)
	for k, v := range cmd {
		msg[k] = v
	}
	msg["id"] = id

	s.writeMu.Lock()
	err = conn.WriteJSON(msg)
	s.writeMu.Unlock()
	if err != nil {
		s.pendMu.Lock()
		delete(s.pending, id)
		s.pendMu.Unlock()
		return nil, fmt.Errorf("falha ao enviar comando %v: %w", cmd["command"], err)
	}

	select {
	case <-ctx.Done():
		s.pendMu.Lock()
		delete(s.pending, id)
		s.pendMu.Unlock()
		return nil, ctx.Err()
	case env := <-ch:
		if env.Status != "success" {
			return nil, &LedgerError{Code: env.ErrorCode, Message: env.ErrorMessage}
		}
		return env.Result, nil
	}
}

// AccountNFTs lista os NFTs de uma conta, limitado a limit entradas.
func (s *XRPLService) AccountNFTs(ctx context.Context, account string, limit int) ([]models.AccountNFT, error) {
	raw, err := s.Request(ctx, map[string]interface{}{
		"command": "account_nfts",
		"account": account,
		"limit":   limit,
	})
	if err != nil {
		return nil, fmt.Errorf("falha ao buscar NFTs da conta %s: %w", account, err)
	}
	var result struct {
		AccountNFTs []models.AccountNFT `json:"account_nfts"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("falha ao decodificar account_nfts: %w", err)
	}
	return result.AccountNFTs, nil
}

// NFTSellOffers lista as ofertas de venda ativas de um token.
func (s *XRPLService) NFTSellOffers(ctx context.Context, nftID string) ([]models.NFTOffer, error) {
	return s.nftOffers(ctx, "nft_sell_offers", nftID)
}

// NFTBuyOffers lista as ofertas de compra ativas de um token.
func (s *XRPLService) NFTBuyOffers(ctx context.Context, nftID string) ([]models.NFTOffer, error) {
	return s.nftOffers(ctx, "nft_buy_offers", nftID)
}

func (s *XRPLService) nftOffers(ctx context.Context, command, nftID string) ([]models.NFTOffer, error) {
	raw, err := s.Request(ctx, map[string]interface{}{
		"command": command,
		"nft_id":  nftID,
	})
	if err != nil {
		return nil, err
	}
	var result struct {
		Offers []models.NFTOffer `json:"offers"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("falha ao decodificar %s: %w", command, err)
	}
	return result.Offers, nil
}

// Tx consulta uma transação pelo hash.
func (s *XRPLService) Tx(ctx context.Context, hash string) (*models.TxResult, error) {
	raw, err := s.Request(ctx, map[string]interface{}{
		"command":     "tx",
		"transaction": hash,
	})
	if err != nil {
		return nil, err
	}
	var result models.TxResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("falha ao decodificar transação %s: %w", hash, err)
	}
	if result.Hash == "" {
		result.Hash = hash
	}
	return &result, nil
}

// GetNetworkInfo consulta o estado do servidor conectado.
func (s *XRPLService) GetNetworkInfo(ctx context.Context) (*models.ServerInfo, error) {
	raw, err := s.Request(ctx, map[string]interface{}{"command": "server_info"})
	if err != nil {
		return nil, fmt.Errorf("falha ao obter informações da rede: %w", err)
	}
	var result struct {
		Info struct {
			ServerState     string `json:"server_state"`
			ValidatedLedger struct {
				Seq uint64 `json:"seq"`
			} `json:"validated_ledger"`
		} `json:"info"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("falha ao decodificar server_info: %w", err)
	}
	return &models.ServerInfo{
		Network:      s.NetworkName(),
		ServerStatus: result.Info.ServerState,
		LedgerIndex:  result.Info.ValidatedLedger.Seq,
	}, nil
}

// Autofill preenche Sequence, Fee e LastLedgerSequence de um txjson, sem
// sobrescrever campos já presentes. Devolve uma cópia: o template original
// não é mutado.
func (s *XRPLService) Autofill(ctx context.Context, tx map[string]interface{}) (map[string]interface{}, error) {
	prepared := make(map[string]interface{}, len(tx)+3)
	for k, v := range tx {
		prepared[k] = v
	}

	account, _ := prepared["Account"].(string)
	if account == "" {
		return nil, fmt.Errorf("transação sem campo Account")
	}

	if _, ok := prepared["Sequence"]; !ok {
		raw, err := s.Request(ctx, map[string]interface{}{
			"command":      "account_info",
			"account":      account,
			"ledger_index": "current",
		})
		if err != nil {
			return nil, fmt.Errorf("falha ao obter account_info de %s: %w", account, err)
		}
		var info struct {
			AccountData struct {
				Sequence uint32 `json:"Sequence"`
			} `json:"account_data"`
		}
		if err := json.Unmarshal(raw, &info); err != nil {
			return nil, fmt.Errorf("falha ao decodificar account_info: %w", err)
		}
		prepared["Sequence"] = info.AccountData.Sequence
	}

	if _, ok := prepared["Fee"]; !ok {
		raw, err := s.Request(ctx, map[string]interface{}{"command": "fee"})
		if err != nil {
			return nil, fmt.Errorf("falha ao obter taxa da rede: %w", err)
		}
		var fee struct {
			Drops struct {
				OpenLedgerFee string `json:"open_ledger_fee"`
			} `json:"drops"`
		}
		if err := json.Unmarshal(raw, &fee); err != nil {
			return nil, fmt.Errorf("falha ao decodificar fee: %w", err)
		}
		prepared["Fee"] = fee.Drops.OpenLedgerFee
	}

	if _, ok := prepared["LastLedgerSequence"]; !ok {
		raw, err := s.Request(ctx, map[string]interface{}{"command": "ledger_current"})
		if err != nil {
			return nil, fmt.Errorf("falha ao obter ledger corrente: %w", err)
		}
		var ledger struct {
			LedgerCurrentIndex uint64 `json:"ledger_current_index"`
		}
		if err := json.Unmarshal(raw, &ledger); err != nil {
			return nil, fmt.Errorf("falha ao decodificar ledger_current: %w", err)
		}
		// Margem de 20 ledgers para a transação ser incluída.
		prepared["LastLedgerSequence"] = ledger.LedgerCurrentIndex + 20
	}

	return prepared, nil
}

// Submit envia um blob já assinado diretamente à rede. Usado apenas pelos
// caminhos que não passam pelo XUMM.
func (s *XRPLService) Submit(ctx context.Context, txBlob string) (*models.SubmitResult, error) {
	raw, err := s.Request(ctx, map[string]interface{}{
		"command": "submit",
		"tx_blob": txBlob,
	})
	if err != nil {
		return nil, fmt.Errorf("falha ao submeter transação: %w", err)
	}
	var result struct {
		EngineResult        string `json:"engine_result"`
		EngineResultMessage string `json:"engine_result_message"`
		Accepted            bool   `json:"accepted"`
		TxJSON              struct {
			Hash string `json:"hash"`
		} `json:"tx_json"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("falha ao decodificar resultado do submit: %w", err)
	}
	return &models.SubmitResult{
		EngineResult:        result.EngineResult,
		EngineResultMessage: result.EngineResultMessage,
		Accepted:            result.Accepted,
		TxHash:              result.TxJSON.Hash,
	}, nil
}

// HexToString decodifica uma URI hexadecimal da ledger para texto.
// Devolve "" quando o valor não é hex válido ou não é UTF-8.
func HexToString(h string) string {
	if h == "" {
		return ""
	}
	h = strings.TrimPrefix(h, "0x")
	raw, err := hex.DecodeString(h)
	if err != nil || !utf8.Valid(raw) {
		return ""
	}
	return string(raw)
}

// StringToHex codifica uma URI na representação exigida pelo campo URI da ledger.
func StringToHex(s string) string {
	return strings.ToUpper(hex.EncodeToString([]byte(s)))
}

// FormatNFTokenID normaliza um NFTokenID para consulta: sem espaços, em
// maiúsculas e com o prefixo "00" exigido pelo XRPL.
func FormatNFTokenID(tokenID string) string {
	tokenID = strings.Join(strings.Fields(tokenID), "")
	tokenID = strings.ToUpper(tokenID)
	if !strings.HasPrefix(tokenID, "00") {
		tokenID = "00" + tokenID
	}
	return tokenID
}
