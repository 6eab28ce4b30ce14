package handlers

import (
	"net/http"
	"time"

	"github.com/yebtimotheous/gnx/models"
	"github.com/yebtimotheous/gnx/services"
	"github.com/yebtimotheous/gnx/storage"

	"github.com/go-chi/chi/v5"
)

// WalletHandler lida com a conexão de carteiras via XUMM e com as sessões
// resultantes.
type WalletHandler struct {
	Gateway       services.SigningGateway
	Store         storage.Store
	ReturnURL     string
	SessionMaxAge time.Duration
}

// NewWalletHandler cria o handler com a validade de sessão padrão de 30 min.
func NewWalletHandler(gateway services.SigningGateway, store storage.Store, returnURL string) *WalletHandler {
	return &WalletHandler{
		Gateway:       gateway,
		Store:         store,
		ReturnURL:     returnURL,
		SessionMaxAge: 30 * time.Minute,
	}
}

// Connect inicia o fluxo de conexão: cria um payload de SignIn e devolve a
// URL e o QR code para o usuário assinar.
// POST /api/xumm/connect
func (h *WalletHandler) Connect(w http.ResponseWriter, r *http.Request) {
	request, err := h.Gateway.CreateSignInRequest(r.Context(), h.ReturnURL)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, request)
}

// Status consulta o estado de um payload de conexão. Quando o usuário assina,
// a sessão da conta é registrada.
// GET /api/xumm/status?uuid=...
func (h *WalletHandler) Status(w http.ResponseWriter, r *http.Request) {
	uuid := r.URL.Query().Get("uuid")
	if uuid == "" {
		http.Error(w, "uuid do payload é obrigatório", http.StatusBadRequest)
		return
	}

	status, err := h.Gateway.GetStatus(r.Context(), uuid)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if status.Resolved && status.Signed && status.Account != "" {
		session := models.WalletSession{
			Account:     status.Account,
			PayloadUUID: uuid,
			ConnectedAt: time.Now().UTC(),
		}
		if err := h.Store.SaveSession(session); err != nil {
			writeServiceError(w, err)
			return
		}
	}
	respondJSON(w, http.StatusOK, status)
}

// ValidateWallet diz se a conta tem uma sessão recente o suficiente.
// GET /api/wallet/{account}/valid
func (h *WalletHandler) ValidateWallet(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	if account == "" {
		http.Error(w, "endereço da conta é obrigatório", http.StatusBadRequest)
		return
	}

	valid, err := h.Store.IsSessionValid(account, h.SessionMaxAge)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"account": account,
		"valid":   valid,
	})
}

// Disconnect encerra a sessão da conta.
// POST /api/wallet/{account}/disconnect
func (h *WalletHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	if account == "" {
		http.Error(w, "endereço da conta é obrigatório", http.StatusBadRequest)
		return
	}

	if err := h.Store.DeleteSession(account); err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "desconectado"})
}
