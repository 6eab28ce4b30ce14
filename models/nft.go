package models

// AccountNFT representa uma entrada retornada pelo comando account_nfts do XRPL.
// A URI vem codificada em hexadecimal, como armazenada na ledger.
type AccountNFT struct {
	NFTokenID    string `json:"NFTokenID"`
	URI          string `json:"URI,omitempty"`
	Issuer       string `json:"Issuer"`
	Flags        uint32 `json:"Flags"`
	NFTokenTaxon uint32 `json:"NFTokenTaxon"`
	TransferFee  uint32 `json:"TransferFee"`
	Serial       uint32 `json:"nft_serial"`
}

// MetadataAttribute é um atributo exibível do NFT (par trait/valor).
type MetadataAttribute struct {
	TraitType string      `json:"trait_type"`
	Value     interface{} `json:"value"`
}

// NFTMetadata é o documento off-ledger referenciado pela URI do token.
// Os campos image_url/image_data/external_url são redundâncias resolvíveis
// por gateway, mantidas por compatibilidade com marketplaces.
type NFTMetadata struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Image       string                 `json:"image"`
	ImageURL    string                 `json:"image_url,omitempty"`
	ImageData   string                 `json:"image_data,omitempty"`
	ExternalURL string                 `json:"external_url,omitempty"`
	Attributes  []MetadataAttribute    `json:"attributes"`
	Properties  map[string]interface{} `json:"properties,omitempty"`
}

// Holding é a visão materializada de um NFT de uma conta: a entrada da ledger
// mais a metadata resolvida (ou nula, quando o token não tem URI utilizável).
type Holding struct {
	AccountNFT
	Network    string       `json:"network"`
	DecodedURI string       `json:"decoded_uri,omitempty"`
	Metadata   *NFTMetadata `json:"metadata"`
	Error      string       `json:"error,omitempty"`
}
