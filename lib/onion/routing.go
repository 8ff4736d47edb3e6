package onion

// Routing records are the JSON tails of layer frames. Field order is
// fixed by the struct declarations; encoding/json emits them compactly
// in this order, which the peel tests rely on.

// relayRoute tells an intermediate hop where to forward the inner blob
// and which ephemeral public key its successor must use.
type relayRoute struct {
	Destination  string `json:"destination"`
	EphemeralKey string `json:"ephemeral_key"`
	EncType      string `json:"enc_type"`
}

// terminalRoute tells the terminal hop which HTTP destination to call.
type terminalRoute struct {
	Host     string `json:"host"`
	Port     uint16 `json:"port"`
	Protocol string `json:"protocol"`
	Target   string `json:"target"`
}

// innerRoute is the minimal route annotation on the innermost payload
// frame. The destination address lives in the terminal hop's routing,
// not here.
type innerRoute struct {
	Headers map[string]string `json:"headers"`
}

// outerMeta is the plaintext metadata tail of the outermost wrapper,
// read by the entry hop before any decryption.
type outerMeta struct {
	EphemeralKey string `json:"ephemeral_key"`
	EncType      string `json:"enc_type"`
}
