package chainclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/dxpool/hns-backend/internal/logger"
	"github.com/dxpool/hns-backend/internal/logs"
)

// rpcClient is the concrete Client talking to an hsd-compatible JSON-RPC
// endpoint. Grounded on daglabs-btcd/rpcclient's request/response shape
// (method name + positional params, unmarshaled result), collapsed from
// that package's future/promise pattern into plain synchronous calls since
// the query engine and indexer both always block on the result immediately.
type rpcClient struct {
	httpClient *http.Client
	url        string
	user       string
	pass       string
	log        *logs.Logger
}

// NewRPCClient constructs a Client bound to an hsd-style JSON-RPC HTTP
// endpoint. timeout bounds every individual RPC call (spec.md §5
// "Cancellation / timeouts... upstream-client request timeouts").
func NewRPCClient(url, user, pass string, timeout time.Duration) Client {
	return &rpcClient{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
		user:       user,
		pass:       pass,
		log:        logger.Get(logger.SubsystemChainClient),
	}
}

type rpcRequest struct {
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
	ID     int           `json:"id"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
	ID     int             `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func (c *rpcClient) call(ctx context.Context, method string, params []interface{}, out interface{}) error {
	body, err := json.Marshal(rpcRequest{Method: method, Params: params, ID: 1})
	if err != nil {
		return errors.Wrapf(err, "marshaling rpc request %s", method)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrapf(err, "building rpc request %s", method)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.user != "" {
		req.SetBasicAuth(c.user, c.pass)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "calling rpc method %s", method)
	}
	defer resp.Body.Close()

	var rr rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return errors.Wrapf(err, "decoding rpc response for %s", method)
	}
	if rr.Error != nil {
		return errors.Wrapf(rr.Error, "rpc method %s", method)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(rr.Result, out); err != nil {
		return errors.Wrapf(err, "unmarshaling rpc result for %s", method)
	}
	return nil
}

func (c *rpcClient) GetTip(ctx context.Context) (Entry, error) {
	var e entryWire
	if err := c.call(ctx, "getTip", nil, &e); err != nil {
		return Entry{}, err
	}
	return e.toEntry(), nil
}

func (c *rpcClient) GetEntry(ctx context.Context, height uint32) (Entry, error) {
	var e entryWire
	if err := c.call(ctx, "getEntry", []interface{}{height}, &e); err != nil {
		return Entry{}, err
	}
	return e.toEntry(), nil
}

func (c *rpcClient) GetBlockByHeight(ctx context.Context, height uint32) (Block, error) {
	var b Block
	if err := c.call(ctx, "getBlockByHeight", []interface{}{height}, &b); err != nil {
		return Block{}, err
	}
	return b, nil
}

func (c *rpcClient) GetBlockByHash(ctx context.Context, hash string) (Block, error) {
	var b Block
	if err := c.call(ctx, "getBlock", []interface{}{hash}, &b); err != nil {
		return Block{}, err
	}
	return b, nil
}

func (c *rpcClient) GetBlockView(ctx context.Context, block Block) (View, error) {
	pairs := make(map[string]Output, len(block.Txs))
	for _, tx := range block.Txs {
		if tx.IsCoinbase {
			continue
		}
		for _, in := range tx.Inputs {
			var o outputWire
			if err := c.call(ctx, "getOutput", []interface{}{in.PrevTxid, in.PrevIndex}, &o); err != nil {
				c.log.Warnf("getBlockView: missing prevout %s:%d: %v", in.PrevTxid, in.PrevIndex, err)
				continue
			}
			pairs[outpointKey(in.PrevTxid, in.PrevIndex)] = o.toOutput()
		}
	}
	return NewMapView(pairs), nil
}

func (c *rpcClient) GetMedianTime(ctx context.Context, entry Entry) (int64, error) {
	var t int64
	err := c.call(ctx, "getMedianTime", []interface{}{entry.Hash}, &t)
	return t, err
}

func (c *rpcClient) GetNextHash(ctx context.Context, hash string) (string, bool, error) {
	var result struct {
		Hash string `json:"hash"`
	}
	if err := c.call(ctx, "getNextHash", []interface{}{hash}, &result); err != nil {
		return "", false, err
	}
	return result.Hash, result.Hash != "", nil
}

func (c *rpcClient) GetNameState(ctx context.Context, nameHash string) (*NameState, error) {
	var ns *NameState
	if err := c.call(ctx, "getNameStatus", []interface{}{nameHash}, &ns); err != nil {
		return nil, err
	}
	return ns, nil
}

func (c *rpcClient) GetMeta(ctx context.Context, txid string) (*TxMeta, error) {
	var meta *TxMeta
	if err := c.call(ctx, "getTxMeta", []interface{}{txid}, &meta); err != nil {
		return nil, err
	}
	return meta, nil
}

func (c *rpcClient) GetMetaView(ctx context.Context, meta TxMeta) (View, error) {
	return c.GetBlockView(ctx, Block{Txs: []Tx{meta.Tx}})
}

func (c *rpcClient) Subscribe(ctx context.Context) (<-chan Event, error) {
	// The real adapter would open a websocket/long-poll connection to hsd
	// and translate its `block connect`/`chain reset` notifications into
	// Events; out of scope per spec.md §1 ("the upstream full-node client
	// itself... we assume it exposes the operations enumerated in §6.2").
	ch := make(chan Event)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (c *rpcClient) GetMempool(ctx context.Context) ([]MempoolEntry, error) {
	var entries []MempoolEntry
	err := c.call(ctx, "getRawMempool", []interface{}{true}, &entries)
	return entries, err
}

func (c *rpcClient) GetPeers(ctx context.Context) ([]Peer, error) {
	var peers []Peer
	err := c.call(ctx, "getPeerInfo", nil, &peers)
	return peers, err
}

func (c *rpcClient) GetStatus(ctx context.Context) (NodeStatus, error) {
	var status NodeStatus
	err := c.call(ctx, "getInfo", nil, &status)
	return status, err
}

// entryWire/outputWire decode the hex/string wire representation of Entry
// and Output into their typed in-memory form (big.Int chainwork, etc.)

type entryWire struct {
	Height     uint32 `json:"height"`
	Hash       string `json:"hash"`
	Time       int64  `json:"time"`
	Bits       uint32 `json:"bits"`
	Chainwork  string `json:"chainwork"`
	PrevBlock  string `json:"prevBlock"`
	MerkleRoot string `json:"merkleRoot"`
}

func (e entryWire) toEntry() Entry {
	work := new(big.Int)
	if e.Chainwork != "" {
		work.SetString(e.Chainwork, 16)
	}
	return Entry{
		Height:     e.Height,
		Hash:       e.Hash,
		Time:       e.Time,
		Bits:       e.Bits,
		Chainwork:  work,
		PrevBlock:  e.PrevBlock,
		MerkleRoot: e.MerkleRoot,
	}
}

type outputWire struct {
	Address string `json:"address"`
	Value   uint64 `json:"value"`
	Covenant struct {
		Type  int      `json:"type"`
		Items []string `json:"items"`
	} `json:"covenant"`
}

func (o outputWire) toOutput() Output {
	return Output{
		Address: o.Address,
		Value:   o.Value,
		Covenant: OutputCovenant{
			Type:  o.Covenant.Type,
			Items: o.Covenant.Items,
		},
	}
}
