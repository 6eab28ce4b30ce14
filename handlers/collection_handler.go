package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/yebtimotheous/gnx/models"
	"github.com/yebtimotheous/gnx/storage"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// CollectionHandler lida com o registro de coleções e seus taxons.
type CollectionHandler struct {
	Store storage.Store
}

// NewCollectionHandler cria o handler de coleções.
func NewCollectionHandler(store storage.Store) *CollectionHandler {
	return &CollectionHandler{Store: store}
}

// CreateCollection registra uma coleção.
// POST /api/collections
func (h *CollectionHandler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	var requestBody struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Taxon       uint32 `json:"taxon"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if requestBody.Name == "" {
		http.Error(w, "nome da coleção é obrigatório", http.StatusBadRequest)
		return
	}

	collection := models.Collection{
		ID:          uuid.New().String(),
		Name:        requestBody.Name,
		Description: requestBody.Description,
		Taxon:       requestBody.Taxon,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.Store.SaveCollection(collection); err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, collection)
}

// ListCollections lista as coleções registradas.
// GET /api/collections
func (h *CollectionHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := h.Store.GetCollections()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, collections)
}

// GetCollectionByTaxon busca a coleção associada a um taxon.
// GET /api/collections/taxon/{taxon}
func (h *CollectionHandler) GetCollectionByTaxon(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "taxon")
	taxon, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		http.Error(w, "taxon inválido", http.StatusBadRequest)
		return
	}

	collection, found, err := h.Store.GetCollectionByTaxon(uint32(taxon))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !found {
		http.Error(w, "Coleção não encontrada", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, collection)
}
