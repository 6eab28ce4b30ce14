package models

// TxResult é o resultado do comando tx para uma transação submetida.
type TxResult struct {
	Hash      string  `json:"hash"`
	Validated bool    `json:"validated"`
	Meta      *TxMeta `json:"meta"`
}

// TxMeta é a metadata de validação de uma transação.
type TxMeta struct {
	AffectedNodes     []AffectedNode `json:"AffectedNodes"`
	TransactionResult string         `json:"TransactionResult"`
}

// AffectedNode é uma entrada heterogênea da lista AffectedNodes: exatamente
// um dos três ponteiros é não-nulo.
type AffectedNode struct {
	CreatedNode  *LedgerNode `json:"CreatedNode,omitempty"`
	ModifiedNode *LedgerNode `json:"ModifiedNode,omitempty"`
	DeletedNode  *LedgerNode `json:"DeletedNode,omitempty"`
}

// LedgerNode é um objeto da ledger afetado por uma transação.
type LedgerNode struct {
	LedgerEntryType string      `json:"LedgerEntryType"`
	LedgerIndex     string      `json:"LedgerIndex"`
	NewFields       *NodeFields `json:"NewFields,omitempty"`
	FinalFields     *NodeFields `json:"FinalFields,omitempty"`
}

// NodeFields carrega apenas os campos que o extrator de NFTokenID consulta.
type NodeFields struct {
	NFTokens []NFTokenWrapper `json:"NFTokens,omitempty"`
}

// NFTokenWrapper embrulha uma entrada NFToken de uma NFTokenPage.
type NFTokenWrapper struct {
	NFToken NFTokenEntry `json:"NFToken"`
}

// NFTokenEntry é um token dentro de uma NFTokenPage.
type NFTokenEntry struct {
	NFTokenID string `json:"NFTokenID"`
	URI       string `json:"URI,omitempty"`
}

// ServerInfo resume o estado do servidor XRPL consultado.
type ServerInfo struct {
	Network      string `json:"network"`
	ServerStatus string `json:"server_status"`
	LedgerIndex  uint64 `json:"ledger_index"`
}

// SubmitResult é a resposta do comando submit para um blob já assinado.
type SubmitResult struct {
	EngineResult        string `json:"engine_result"`
	EngineResultMessage string `json:"engine_result_message"`
	Accepted            bool   `json:"accepted"`
	TxHash              string `json:"tx_hash,omitempty"`
}
