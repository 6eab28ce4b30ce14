package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/yebtimotheous/gnx/services"

	"github.com/go-chi/chi/v5"
)

// OfferHandler lida com o ciclo de vida das ofertas de venda e transferência.
type OfferHandler struct {
	Offers *services.OfferService
	Ledger services.LedgerGateway
}

// NewOfferHandler cria o handler de ofertas.
func NewOfferHandler(offers *services.OfferService, ledger services.LedgerGateway) *OfferHandler {
	return &OfferHandler{Offers: offers, Ledger: ledger}
}

// ListOffers lista as ofertas de venda e compra ativas de um token.
// GET /api/offers/{tokenID}
func (h *OfferHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	tokenID := chi.URLParam(r, "tokenID")
	if tokenID == "" {
		http.Error(w, "NFTokenID é obrigatório", http.StatusBadRequest)
		return
	}

	sell, buy, err := h.Offers.GetNFTOffers(r.Context(), tokenID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sell_offers": sell,
		"buy_offers":  buy,
	})
}

// GetOfferStatus resolve o estado de listagem de um token.
// GET /api/offers/{tokenID}/status
func (h *OfferHandler) GetOfferStatus(w http.ResponseWriter, r *http.Request) {
	tokenID := chi.URLParam(r, "tokenID")
	if tokenID == "" {
		http.Error(w, "NFTokenID é obrigatório", http.StatusBadRequest)
		return
	}

	status, err := h.Offers.ResolveOfferStatus(r.Context(), tokenID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, status)
}

// CreateSellOffer cria ou substitui a oferta de venda de um token.
// POST /api/offers/sell
func (h *OfferHandler) CreateSellOffer(w http.ResponseWriter, r *http.Request) {
	var requestBody struct {
		Account            string `json:"account"`
		TokenID            string `json:"token_id"`
		AmountDrops        string `json:"amount_drops"`
		ExistingOfferIndex string `json:"existing_offer_index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if requestBody.Account == "" || requestBody.TokenID == "" || requestBody.AmountDrops == "" {
		http.Error(w, "account, token_id e amount_drops são obrigatórios", http.StatusBadRequest)
		return
	}

	result, err := h.Offers.CreateOrUpdateSellOffer(r.Context(),
		requestBody.Account, requestBody.TokenID, requestBody.AmountDrops, requestBody.ExistingOfferIndex)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

// CancelOffer cancela uma oferta pelo índice.
// POST /api/offers/cancel
func (h *OfferHandler) CancelOffer(w http.ResponseWriter, r *http.Request) {
	var requestBody struct {
		Account    string `json:"account"`
		OfferIndex string `json:"offer_index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if requestBody.Account == "" || requestBody.OfferIndex == "" {
		http.Error(w, "account e offer_index são obrigatórios", http.StatusBadRequest)
		return
	}

	result, err := h.Offers.CancelOffer(r.Context(), requestBody.Account, requestBody.OfferIndex)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Transfer cria a oferta de valor zero restrita ao destinatário.
// POST /api/offers/transfer
func (h *OfferHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var requestBody struct {
		Account     string `json:"account"`
		TokenID     string `json:"token_id"`
		Destination string `json:"destination"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if requestBody.Account == "" || requestBody.TokenID == "" || requestBody.Destination == "" {
		http.Error(w, "account, token_id e destination são obrigatórios", http.StatusBadRequest)
		return
	}

	result, err := h.Offers.TransferNFT(r.Context(), requestBody.Account, requestBody.TokenID, requestBody.Destination)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

// AcceptBuyOffer aceita a primeira oferta de compra ativa do token.
// POST /api/offers/accept-buy
func (h *OfferHandler) AcceptBuyOffer(w http.ResponseWriter, r *http.Request) {
	var requestBody struct {
		Account string `json:"account"`
		TokenID string `json:"token_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if requestBody.Account == "" || requestBody.TokenID == "" {
		http.Error(w, "account e token_id são obrigatórios", http.StatusBadRequest)
		return
	}

	result, err := h.Offers.AcceptBuyOffer(r.Context(), requestBody.Account, requestBody.TokenID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// SubmitTx envia um blob já assinado diretamente à ledger.
// POST /api/tx/submit
func (h *OfferHandler) SubmitTx(w http.ResponseWriter, r *http.Request) {
	var requestBody struct {
		TxBlob string `json:"tx_blob"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if requestBody.TxBlob == "" {
		http.Error(w, "tx_blob é obrigatório", http.StatusBadRequest)
		return
	}

	result, err := h.Ledger.Submit(r.Context(), requestBody.TxBlob)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
