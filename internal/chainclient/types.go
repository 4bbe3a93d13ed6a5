// Package chainclient defines the Chain Client (component B, SPEC_FULL.md
// §4.1): a thin, stateless adapter over the upstream full-node's RPC and
// event stream. Grounded on daglabs-btcd/rpcclient's call shape (typed
// Receive() results over a JSON-RPC connection), adapted from futures to
// plain context-bound synchronous calls since nothing downstream needs
// out-of-order completion.
package chainclient

import "math/big"

// Entry is a block header plus chain-position metadata (spec.md §4.1).
type Entry struct {
	Height     uint32
	Hash       string
	Time       int64
	Bits       uint32
	Chainwork  *big.Int
	PrevBlock  string
	MerkleRoot string
}

// Input is a transaction input. PrevTxid/PrevIndex are zero-valued for a
// coinbase input's implicit placeholder entry.
type Input struct {
	PrevTxid  string
	PrevIndex uint32
}

// Output is a transaction output, carrying the decoded address hash and
// covenant (spec.md §3).
type Output struct {
	Address  string
	Value    uint64
	Covenant OutputCovenant
}

// OutputCovenant mirrors model.Covenant without importing internal/model,
// keeping the chain-client boundary free of secondary-store concerns; the
// indexer converts between the two at the point it writes Coin records.
type OutputCovenant struct {
	Type  int
	Items []string
}

// Tx is a full transaction as delivered by a block or the mempool.
type Tx struct {
	Txid       string
	Hash       string // normalized/witness hash, distinct from Txid for malleable formats
	IsCoinbase bool
	Inputs     []Input
	Outputs    []Output
}

// Block is a full connected block (spec.md §4.1 getBlock).
type Block struct {
	Hash string
	Txs  []Tx
}

// View resolves a transaction input to the Output it spends, the way
// getBlockView/getMetaView do in spec.md §4.1/§4.3. A View only needs to
// answer for inputs present in the Tx(s) it was built for.
type View interface {
	PrevOutput(prevTxid string, prevIndex uint32) (Output, bool)
}

// MapView is a simple in-memory View backed by a map, used by the chain
// client implementation and by tests.
type MapView map[string]Output

// PrevOutput implements View.
func (v MapView) PrevOutput(prevTxid string, prevIndex uint32) (Output, bool) {
	o, ok := v[outpointKey(prevTxid, prevIndex)]
	return o, ok
}

func outpointKey(txid string, index uint32) string {
	b := make([]byte, 0, len(txid)+11)
	b = append(b, txid...)
	b = append(b, ':')
	b = appendUint32(b, index)
	return string(b)
}

func appendUint32(b []byte, v uint32) []byte {
	if v == 0 {
		return append(b, '0')
	}
	var tmp [10]byte
	i := len(tmp)
	for v > 0 {
		i--
		tmp[i] = byte('0' + v%10)
		v /= 10
	}
	return append(b, tmp[i:]...)
}

// NewMapView builds a View from prevout->output pairs.
func NewMapView(pairs map[string]Output) View {
	return MapView(pairs)
}

// NameState is the live consensus name-state for a name hash (spec.md
// §4.3 getName).
type NameState struct {
	NameHash    string
	Name        string
	Registered  bool
	Revoked     bool
	Weak        bool
	Height      uint32 // open height
	Renewal     uint32 // height of last renewal
	Renewals    uint32 // renewal count
	Transfer    uint32 // height a pending transfer was initiated, 0 if none
	Value       uint64
	Highest     uint64
	OwnerTxid   string
	OwnerIndex  uint32
}

// TxMeta is a lightweight handle to a transaction plus its confirming block,
// from which a View over its inputs can be built (spec.md §4.1
// getMeta/getMetaView).
type TxMeta struct {
	Tx     Tx
	Height uint32
	Hash   string // confirming block hash
	Time   int64
}

// Peer is one entry of the upstream node's peer list (spec.md §6.1 /peers).
type Peer struct {
	Address     string
	Inbound     bool
	Uptime      int64
	BytesSent   int64
	BytesRecv   int64
	Latitude    float64
	Longitude   float64
	CountryCode string
}

// NodeStatus is the upstream node's live status (spec.md §6.1 /status).
type NodeStatus struct {
	Host             string
	Port             int
	Network          string
	Progress         float64
	Version          string
	Agent            string
	Connections      int
	Height           uint32
	Difficulty       float64
	Uptime           int64
	TotalBytesRecv   int64
	TotalBytesSent   int64
}

// MempoolEntry is one pending transaction in the upstream node's mempool.
type MempoolEntry struct {
	Tx   Tx
	Time int64
	Size int64
}

// EventKind discriminates the Event union (spec.md §4.1/§6.2).
type EventKind int

// Event kinds.
const (
	EventConnect EventKind = iota
	EventBlockConnect
	EventChainReset
	EventError
)

// Event is a single item from the upstream node's event stream.
type Event struct {
	Kind  EventKind
	Entry Entry // set for EventBlockConnect and EventChainReset (reset's tip)
	Block Block // set for EventBlockConnect
	View  View  // set for EventBlockConnect
	Err   error // set for EventError
}
