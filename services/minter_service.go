package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/yebtimotheous/gnx/models"
)

// MintInput são os dados coletados do formulário de cunhagem.
type MintInput struct {
	Account          string
	Name             string
	Description      string
	Image            []byte
	ImageName        string
	ImageContentType string
	Attributes       []models.MetadataAttribute
	Properties       map[string]interface{}
	Collection       string
	Royalties        int
	Taxon            uint32
	TransferFee      uint32
}

// MintResult é o desfecho de uma cunhagem validada na ledger.
type MintResult struct {
	TokenID      string              `json:"token_id"`
	Hash         string              `json:"hash"`
	ImageHash    string              `json:"image_hash"`
	MetadataHash string              `json:"metadata_hash"`
	ImageURI     string              `json:"image_uri"`
	MetadataURI  string              `json:"metadata_uri"`
	Metadata     *models.NFTMetadata `json:"metadata"`
}

// MinterService orquestra a cunhagem de ponta a ponta: valida a entrada, fixa
// imagem e metadata no IPFS, prepara e assina a transação de cunhagem, aguarda
// a validação e extrai o NFTokenID. Cada passo só começa com o resultado do
// anterior confirmado; não há compensação — conteúdo fixado em uma cunhagem
// que falha depois fica órfão.
type MinterService struct {
	Pinner Pinner
	Ledger LedgerGateway
	Signer SignatureRequester
	Waiter Validator
}

// NewMinterService cria o orquestrador de cunhagem.
func NewMinterService(pinner Pinner, ledger LedgerGateway, signer SignatureRequester, waiter Validator) *MinterService {
	return &MinterService{
		Pinner: pinner,
		Ledger: ledger,
		Signer: signer,
		Waiter: waiter,
	}
}

func validateMintInput(input MintInput) error {
	if input.Name == "" {
		return &ValidationError{Field: "name", Reason: "nome é obrigatório"}
	}
	if input.Description == "" {
		return &ValidationError{Field: "description", Reason: "descrição é obrigatória"}
	}
	if len(input.Image) == 0 {
		return &ValidationError{Field: "image", Reason: "imagem é obrigatória"}
	}
	if !strings.HasPrefix(input.ImageContentType, "image/") {
		return &ValidationError{Field: "image", Reason: "tipo de arquivo de imagem inválido"}
	}
	if input.Account == "" {
		return &ValidationError{Field: "account", Reason: "nenhum endereço de carteira informado"}
	}
	return nil
}

// buildMetadata monta o documento de metadata no esquema canônico ipfs://,
// com campos redundantes resolvíveis por gateway para compatibilidade.
func buildMetadata(input MintInput, imageHash string) *models.NFTMetadata {
	imageURI := "ipfs://" + imageHash
	gatewayURL := IPFSGateways[0] + imageHash

	properties := map[string]interface{}{
		"name":          input.Name,
		"description":   input.Description,
		"image":         imageURI,
		"royalties":     input.Royalties,
		"collection":    input.Collection,
		"creator":       input.Account,
		"originalImage": imageHash,
	}
	for k, v := range input.Properties {
		properties[k] = v
	}

	attributes := input.Attributes
	if attributes == nil {
		attributes = []models.MetadataAttribute{}
	}

	return &models.NFTMetadata{
		Name:        input.Name,
		Description: input.Description,
		Image:       imageURI,
		ImageURL:    gatewayURL,
		ImageData:   imageURI,
		ExternalURL: gatewayURL,
		Attributes:  attributes,
		Properties:  properties,
	}
}

// MintNFT executa o pipeline de cunhagem e devolve o token criado.
func (s *MinterService) MintNFT(ctx context.Context, input MintInput) (*MintResult, error) {
	if err := validateMintInput(input); err != nil {
		return nil, err
	}

	// 1. Fixa a imagem.
	imageResult, err := s.Pinner.UploadFile(ctx, input.ImageName, input.ImageContentType, input.Image)
	if err != nil {
		return nil, &PinningError{Op: "upload da imagem", Err: err}
	}
	if imageResult.IpfsHash == "" {
		return nil, &PinningError{Op: "upload da imagem", Err: errors.New("resposta sem identificador de conteúdo")}
	}
	imageURI := "ipfs://" + imageResult.IpfsHash
	log.Printf("Imagem fixada no IPFS: %s", imageURI)

	// 2. Monta e fixa a metadata referenciando a imagem.
	metadata := buildMetadata(input, imageResult.IpfsHash)
	metadataResult, err := s.Pinner.UploadJSON(ctx, input.Name, metadata)
	if err != nil {
		return nil, &PinningError{Op: "upload da metadata", Err: err}
	}
	if metadataResult.IpfsHash == "" {
		return nil, &PinningError{Op: "upload da metadata", Err: errors.New("resposta sem identificador de conteúdo")}
	}
	metadataURI := "ipfs://" + metadataResult.IpfsHash
	log.Printf("Metadata fixada no IPFS: %s", metadataURI)

	// 3. Prepara a transação de cunhagem com a URI da metadata.
	mintTx := map[string]interface{}{
		"TransactionType": "NFTokenMint",
		"Account":         input.Account,
		"URI":             StringToHex(metadataURI),
		"Flags":           FlagTransferable,
		"TransferFee":     input.TransferFee,
		"NFTokenTaxon":    input.Taxon,
	}
	prepared, err := s.Ledger.Autofill(ctx, mintTx)
	if err != nil {
		return nil, err
	}

	// 4. Assinatura pelo usuário via gateway.
	outcome, err := s.Signer.RequestSignature(ctx, prepared)
	if err != nil {
		return nil, err
	}
	if !outcome.Signed {
		return nil, ErrSigningRejected
	}
	log.Printf("Transação de cunhagem assinada, aguardando validação: %s", outcome.TxID)

	// 5. Aguarda a validação na ledger.
	validated, err := s.Waiter.AwaitValidation(ctx, outcome.TxID)
	if err != nil {
		return nil, err
	}

	// 6. Extrai o NFTokenID da metadata de validação.
	tokenID, ok := ExtractNFTokenID(validated.Meta)
	if !ok {
		return nil, ErrTokenIDNotFound
	}
	log.Printf("NFT cunhado com sucesso: %s", tokenID)

	return &MintResult{
		TokenID:      tokenID,
		Hash:         outcome.TxID,
		ImageHash:    imageResult.IpfsHash,
		MetadataHash: metadataResult.IpfsHash,
		ImageURI:     imageURI,
		MetadataURI:  metadataURI,
		Metadata:     metadata,
	}, nil
}

// ExtractNFTokenID varre os nós afetados pela cunhagem: primeiro páginas
// NFTokenPage criadas, depois modificadas — a cunhagem pode criar uma página
// nova ou anexar a uma existente.
func ExtractNFTokenID(meta *models.TxMeta) (string, bool) {
	if meta == nil {
		return "", false
	}
	for _, node := range meta.AffectedNodes {
		if node.CreatedNode != nil && node.CreatedNode.LedgerEntryType == "NFTokenPage" {
			if fields := node.CreatedNode.NewFields; fields != nil && len(fields.NFTokens) > 0 {
				return fields.NFTokens[0].NFToken.NFTokenID, true
			}
		}
	}
	for _, node := range meta.AffectedNodes {
		if node.ModifiedNode != nil && node.ModifiedNode.LedgerEntryType == "NFTokenPage" {
			if fields := node.ModifiedNode.FinalFields; fields != nil && len(fields.NFTokens) > 0 {
				return fields.NFTokens[0].NFToken.NFTokenID, true
			}
		}
	}
	return "", false
}
