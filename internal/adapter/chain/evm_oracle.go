// Package chain reads confirmation depth from blockchain nodes.
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"stablecoin-gateway/internal/core/domain"
	"stablecoin-gateway/internal/core/ports"
	"stablecoin-gateway/internal/telemetry"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const maxRPCResponse = 1 << 20

// ErrNoEndpoint is returned for networks without a configured RPC URL.
var ErrNoEndpoint = errors.New("no rpc endpoint configured")

// HTTPClient abstracts the HTTP client for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// jsonRPCRequest is the JSON-RPC 2.0 request format.
type jsonRPCRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// jsonRPCResponse is the JSON-RPC 2.0 response format.
type jsonRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type txReceipt struct {
	BlockNumber string `json:"blockNumber"`
	Status      string `json:"status"`
}

// EVMOracle implements ports.ConfirmationOracle against Ethereum-compatible
// JSON-RPC nodes, one URL per network.
type EVMOracle struct {
	endpoints map[domain.Network]string
	client    HTTPClient
	timeout   time.Duration
	log       zerolog.Logger
	nextID    atomic.Int64
}

// NewEVMOracle creates an oracle. rpcURLs is keyed by network name; entries
// for unknown or non-EVM networks are skipped.
func NewEVMOracle(rpcURLs map[string]string, client HTTPClient, timeout time.Duration, log zerolog.Logger) *EVMOracle {
	endpoints := make(map[domain.Network]string, len(rpcURLs))
	for name, url := range rpcURLs {
		n, ok := domain.ParseNetwork(name)
		if !ok || !n.IsEVM() || url == "" {
			log.Warn().Str("network", name).Msg("ignoring rpc url for unsupported network")
			continue
		}
		endpoints[n] = url
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &EVMOracle{endpoints: endpoints, client: client, timeout: timeout, log: log}
}

// GetConfirmations returns head - receipt block + 1 together with the
// receipt block, or 0 confirmations while the transaction is unmined or
// when it reverted.
func (o *EVMOracle) GetConfirmations(ctx context.Context, network domain.Network, txHash string) (domain.TxConfirmation, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "chain.GetConfirmations")
	defer span.End()
	span.SetAttributes(attribute.String("chain.network", string(network)), attribute.String("chain.tx_hash", txHash))

	conf, err := o.confirmations(ctx, network, txHash)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "confirmation lookup failed")
		return domain.TxConfirmation{}, err
	}
	span.SetAttributes(attribute.Int("chain.confirmations", conf.Confirmations))
	if conf.BlockNumber != nil {
		span.SetAttributes(attribute.Int64("chain.block_number", *conf.BlockNumber))
	}
	return conf, nil
}

func (o *EVMOracle) confirmations(ctx context.Context, network domain.Network, txHash string) (domain.TxConfirmation, error) {
	var none domain.TxConfirmation
	url, ok := o.endpoints[network]
	if !ok {
		return none, fmt.Errorf("%s: %w", network, ErrNoEndpoint)
	}
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	var receipt *txReceipt
	if err := o.call(ctx, url, "eth_getTransactionReceipt", []any{txHash}, &receipt); err != nil {
		return none, err
	}
	if receipt == nil || receipt.BlockNumber == "" {
		return none, nil
	}
	if receipt.Status == "0x0" {
		o.log.Warn().Str("network", string(network)).Str("tx_hash", txHash).Msg("transaction reverted")
		return none, nil
	}
	mined, err := parseQuantity(receipt.BlockNumber)
	if err != nil {
		return none, fmt.Errorf("receipt block number: %w", err)
	}
	if mined > math.MaxInt64 {
		return none, fmt.Errorf("receipt block number %d out of range", mined)
	}
	block := int64(mined)

	var headHex string
	if err := o.call(ctx, url, "eth_blockNumber", []any{}, &headHex); err != nil {
		return none, err
	}
	head, err := parseQuantity(headHex)
	if err != nil {
		return none, fmt.Errorf("head block number: %w", err)
	}
	if head < mined {
		// Load-balanced nodes can lag each other by a block or two.
		return domain.TxConfirmation{BlockNumber: &block}, nil
	}
	return domain.TxConfirmation{Confirmations: int(head-mined) + 1, BlockNumber: &block}, nil
}

func (o *EVMOracle) call(ctx context.Context, url, method string, params []any, out any) error {
	body, err := json.Marshal(jsonRPCRequest{
		JSONRPC: "2.0",
		ID:      o.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", method, resp.StatusCode)
	}

	var rpcResp jsonRPCResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxRPCResponse)).Decode(&rpcResp); err != nil {
		return fmt.Errorf("%s: decode response: %w", method, err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("%s: rpc error %d: %s", method, rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if len(rpcResp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return fmt.Errorf("%s: decode result: %w", method, err)
	}
	return nil
}

// parseQuantity decodes a 0x-prefixed hex quantity.
func parseQuantity(s string) (uint64, error) {
	if !strings.HasPrefix(s, "0x") || len(s) < 3 {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	return strconv.ParseUint(s[2:], 16, 64)
}

var _ ports.ConfirmationOracle = (*EVMOracle)(nil)
