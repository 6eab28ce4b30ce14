package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/yebtimotheous/gnx/services"
)

// NetworkHandler expõe a rede XRPL ativa e permite alterná-la.
type NetworkHandler struct {
	Ledger *services.XRPLService
}

// NewNetworkHandler cria o handler de rede.
func NewNetworkHandler(ledger *services.XRPLService) *NetworkHandler {
	return &NetworkHandler{Ledger: ledger}
}

// GetNetwork devolve a rede ativa, as redes disponíveis e o estado do
// servidor conectado. Se o servidor não responde, só os campos locais saem.
// GET /api/network
func (h *NetworkHandler) GetNetwork(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"network":   h.Ledger.NetworkName(),
		"available": services.NetworkNames(),
	}
	if info, err := h.Ledger.GetNetworkInfo(r.Context()); err == nil {
		body["server_status"] = info.ServerStatus
		body["ledger_index"] = info.LedgerIndex
	}
	respondJSON(w, http.StatusOK, body)
}

// SetNetwork troca a rede ativa. A conexão anterior é encerrada e a próxima
// requisição reconecta ao novo endpoint.
// POST /api/network
func (h *NetworkHandler) SetNetwork(w http.ResponseWriter, r *http.Request) {
	var requestBody struct {
		Network string `json:"network"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if requestBody.Network == "" {
		http.Error(w, "network é obrigatório", http.StatusBadRequest)
		return
	}

	if err := h.Ledger.SetNetwork(requestBody.Network); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"network": h.Ledger.NetworkName()})
}
