package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/yebtimotheous/gnx/models"
	"github.com/yebtimotheous/gnx/services"
	"github.com/yebtimotheous/gnx/storage"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Limite do formulário de cunhagem em memória.
const maxMintFormSize = 32 << 20

// NFTHandler lida com a cunhagem e a listagem de NFTs.
type NFTHandler struct {
	Minter   *services.MinterService
	Holdings *services.HoldingsService
	Ledger   services.LedgerGateway
	Store    storage.Store
}

// NewNFTHandler cria o handler de NFTs.
func NewNFTHandler(minter *services.MinterService, holdings *services.HoldingsService, ledger services.LedgerGateway, store storage.Store) *NFTHandler {
	return &NFTHandler{
		Minter:   minter,
		Holdings: holdings,
		Ledger:   ledger,
		Store:    store,
	}
}

// MintNFT cunha um NFT a partir de um formulário multipart com a imagem e os
// campos de metadata. O corpo só devolve sucesso após a validação na ledger.
// POST /api/nfts/mint
func (h *NFTHandler) MintNFT(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMintFormSize); err != nil {
		http.Error(w, "formulário multipart inválido: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "arquivo de imagem é obrigatório", http.StatusBadRequest)
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "falha ao ler arquivo de imagem", http.StatusBadRequest)
		return
	}

	input := services.MintInput{
		Account:          r.FormValue("account"),
		Name:             r.FormValue("name"),
		Description:      r.FormValue("description"),
		Image:            imageData,
		ImageName:        fileHeader.Filename,
		ImageContentType: fileHeader.Header.Get("Content-Type"),
		Collection:       r.FormValue("collection"),
	}

	if raw := r.FormValue("royalties"); raw != "" {
		royalties, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "royalties inválido", http.StatusBadRequest)
			return
		}
		input.Royalties = royalties
	}
	if raw := r.FormValue("taxon"); raw != "" {
		taxon, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			http.Error(w, "taxon inválido", http.StatusBadRequest)
			return
		}
		input.Taxon = uint32(taxon)
	}
	if raw := r.FormValue("transfer_fee"); raw != "" {
		fee, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			http.Error(w, "transfer_fee inválido", http.StatusBadRequest)
			return
		}
		input.TransferFee = uint32(fee)
	}
	if raw := r.FormValue("attributes"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &input.Attributes); err != nil {
			http.Error(w, "atributos inválidos: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	if raw := r.FormValue("properties"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &input.Properties); err != nil {
			http.Error(w, "propriedades inválidas: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	result, err := h.Minter.MintNFT(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	record := models.MintedNFT{
		ID:          uuid.New().String(),
		Account:     input.Account,
		NFTokenID:   result.TokenID,
		TxHash:      result.Hash,
		Name:        input.Name,
		Description: input.Description,
		MetadataURI: result.MetadataURI,
		ImageURI:    result.ImageURI,
		Taxon:       input.Taxon,
		Network:     h.Ledger.NetworkName(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.Store.SaveMintedNFT(record); err != nil {
		// A cunhagem já foi validada na ledger; o registro interno não pode
		// invalidar o resultado.
		log.Printf("Falha ao registrar NFT cunhado %s: %v", result.TokenID, err)
	}

	respondJSON(w, http.StatusCreated, result)
}

// GetAccountNFTs lista a coleção completa de uma conta com metadata resolvida.
// GET /api/nfts/{account}
func (h *NFTHandler) GetAccountNFTs(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	if account == "" {
		http.Error(w, "endereço da conta é obrigatório", http.StatusBadRequest)
		return
	}

	holdings, err := h.Holdings.ListHoldings(r.Context(), account)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"account": account,
		"network": h.Ledger.NetworkName(),
		"nfts":    holdings,
	})
}

// GetMintedNFTs lista os NFTs cunhados por esta aplicação para a conta.
// GET /api/nfts/{account}/minted
func (h *NFTHandler) GetMintedNFTs(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	if account == "" {
		http.Error(w, "endereço da conta é obrigatório", http.StatusBadRequest)
		return
	}

	nfts, err := h.Store.GetMintedNFTsByAccount(account)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nfts)
}
