package ethrpc

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"cointribute/internal/chain"
	"cointribute/internal/oracle/models"
)

const (
	sigTotalCharities       = "getTotalCharities()"
	sigGetCharity           = "getCharity(uint256)"
	sigUpdateScore          = "updateAiScore(uint256,uint256)"
	sigApprove              = "approveCharity(uint256)"
	sigReject               = "rejectCharity(uint256)"
	sigRequiredApprovals    = "requiredApprovals()"
	sigApprovalCount        = "approvalCount(uint256)"
	sigSetRequiredApprovals = "setRequiredApprovals(uint256)"
	sigRegisteredEvent      = "CharityRegistered(uint256,address,string,uint256)"
)

// Config wires a Gateway to one registry deployment and one oracle account.
type Config struct {
	Endpoint       string // HTTP JSON-RPC endpoint
	WSEndpoint     string // websocket endpoint for eth_subscribe
	Contract       string // registry contract address
	Account        string // oracle account, managed by the node or signer proxy
	CallTimeout    time.Duration
	ConfirmTimeout time.Duration // how long to wait for a receipt
	PollInterval   time.Duration // receipt polling cadence
}

// Gateway implements chain.Gateway against a JSON-RPC node.
type Gateway struct {
	cfg    Config
	client *Client
	logger *slog.Logger
}

var _ chain.Gateway = (*Gateway)(nil)

// New builds a Gateway. The contract and account addresses are required;
// WSEndpoint may be empty when only reads and writes are needed.
func New(cfg Config, logger *slog.Logger) (*Gateway, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("ethrpc: endpoint is required")
	}
	if cfg.Contract == "" {
		return nil, fmt.Errorf("ethrpc: contract address is required")
	}
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = 2 * time.Minute
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3 * time.Second
	}
	return &Gateway{
		cfg:    cfg,
		client: NewClient(cfg.Endpoint, cfg.CallTimeout),
		logger: logger,
	}, nil
}

type callMsg struct {
	From string `json:"from,omitempty"`
	To   string `json:"to"`
	Data string `json:"data"`
}

func (g *Gateway) call(ctx context.Context, data string) (string, error) {
	var result string
	err := g.client.Call(ctx, "eth_call", &result, callMsg{To: g.cfg.Contract, Data: data}, "latest")
	if err != nil {
		return "", err
	}
	return result, nil
}

// TotalCharities reads the registry record count.
func (g *Gateway) TotalCharities(ctx context.Context) (uint64, error) {
	raw, err := g.call(ctx, encodeCall(sigTotalCharities))
	if err != nil {
		return 0, fmt.Errorf("total charities: %w", err)
	}
	return decodeUint256Return(raw)
}

// RequiredApprovals reads the legacy multi-signer approval threshold.
func (g *Gateway) RequiredApprovals(ctx context.Context) (uint64, error) {
	raw, err := g.call(ctx, encodeCall(sigRequiredApprovals))
	if err != nil {
		return 0, fmt.Errorf("required approvals: %w", err)
	}
	return decodeUint256Return(raw)
}

// ApprovalCount reads how many approvals a charity has collected.
func (g *Gateway) ApprovalCount(ctx context.Context, id uint64) (uint64, error) {
	raw, err := g.call(ctx, encodeCall(sigApprovalCount, new(big.Int).SetUint64(id)))
	if err != nil {
		return 0, fmt.Errorf("approval count %d: %w", id, err)
	}
	return decodeUint256Return(raw)
}

// Charity fetches and decodes one registry record.
func (g *Gateway) Charity(ctx context.Context, id uint64) (models.Charity, error) {
	raw, err := g.call(ctx, encodeCall(sigGetCharity, new(big.Int).SetUint64(id)))
	if err != nil {
		return models.Charity{}, fmt.Errorf("get charity %d: %w", id, err)
	}
	charity, err := decodeCharity(raw)
	if err != nil {
		return models.Charity{}, fmt.Errorf("decode charity %d: %w", id, err)
	}
	charity.ID = id
	return charity, nil
}

// decodeCharity unpacks the registry tuple. Both deployed generations share
// the first fourteen fields; newer deployments append per-currency totals and
// an evidence-URL list, which land past the words read here and are ignored.
func decodeCharity(raw string) (models.Charity, error) {
	data, err := decodeHex(raw)
	if err != nil {
		return models.Charity{}, err
	}
	outer := newWordReader(data)
	base := int(outer.uint64At(0))
	if base < 0 || base >= len(data) {
		return models.Charity{}, fmt.Errorf("tuple offset %d out of range", base)
	}
	tuple := newWordReader(data[base:])

	name, err := tuple.stringAt(0, 0)
	if err != nil {
		return models.Charity{}, fmt.Errorf("name: %w", err)
	}
	description, err := tuple.stringAt(1, 0)
	if err != nil {
		return models.Charity{}, fmt.Errorf("description: %w", err)
	}
	evidenceRef, err := tuple.stringAt(2, 0)
	if err != nil {
		return models.Charity{}, fmt.Errorf("evidence ref: %w", err)
	}

	return models.Charity{
		Name:           name,
		Description:    description,
		EvidenceRef:    evidenceRef,
		Wallet:         tuple.addressAt(3),
		Score:          uint8(tuple.uint64At(4)),
		Status:         models.CharityStatus(tuple.uint64At(5)),
		RegisteredAt:   unixTime(tuple.uint64At(6)),
		DecidedAt:      unixTime(tuple.uint64At(7)),
		DecidedBy:      tuple.addressAt(8),
		TotalDonations: tuple.bigAt(9),
		DonorCount:     tuple.uint64At(10),
		FundingGoal:    tuple.bigAt(11),
		Deadline:       unixTime(tuple.uint64At(12)),
		IsActive:       tuple.boolAt(13),
	}, nil
}

func unixTime(seconds uint64) time.Time {
	if seconds == 0 {
		return time.Time{}
	}
	return time.Unix(int64(seconds), 0).UTC()
}

// UpdateScore submits the score-update transaction and waits for its receipt.
func (g *Gateway) UpdateScore(ctx context.Context, id uint64, score uint8) (chain.TxHash, error) {
	data := encodeCall(sigUpdateScore, new(big.Int).SetUint64(id), new(big.Int).SetUint64(uint64(score)))
	return g.submit(ctx, "updateAiScore", data)
}

// Approve submits the explicit approval transaction.
func (g *Gateway) Approve(ctx context.Context, id uint64) (chain.TxHash, error) {
	return g.submit(ctx, "approveCharity", encodeCall(sigApprove, new(big.Int).SetUint64(id)))
}

// Reject submits the explicit rejection transaction.
func (g *Gateway) Reject(ctx context.Context, id uint64) (chain.TxHash, error) {
	return g.submit(ctx, "rejectCharity", encodeCall(sigReject, new(big.Int).SetUint64(id)))
}

// SetRequiredApprovals updates the legacy approval threshold.
func (g *Gateway) SetRequiredApprovals(ctx context.Context, n uint64) (chain.TxHash, error) {
	return g.submit(ctx, "setRequiredApprovals", encodeCall(sigSetRequiredApprovals, new(big.Int).SetUint64(n)))
}

type receipt struct {
	Status      string `json:"status"`
	BlockNumber string `json:"blockNumber"`
}

// submit sends a transaction from the oracle account and blocks until the
// node reports a successful receipt. Confirming before returning is what
// serializes nonces for the single writer.
func (g *Gateway) submit(ctx context.Context, label, data string) (chain.TxHash, error) {
	if g.cfg.Account == "" {
		return "", fmt.Errorf("ethrpc: oracle account is required for writes")
	}

	var txHash string
	err := g.client.Call(ctx, "eth_sendTransaction", &txHash, callMsg{
		From: g.cfg.Account,
		To:   g.cfg.Contract,
		Data: data,
	})
	if err != nil {
		return "", fmt.Errorf("send %s: %w", label, err)
	}

	if g.logger != nil {
		g.logger.DebugContext(ctx, "transaction submitted", "call", label, "tx", txHash)
	}

	if err := g.waitConfirmed(ctx, txHash); err != nil {
		return "", fmt.Errorf("confirm %s: %w", label, err)
	}
	return chain.TxHash(txHash), nil
}

func (g *Gateway) waitConfirmed(ctx context.Context, txHash string) error {
	deadline := time.NewTimer(g.cfg.ConfirmTimeout)
	defer deadline.Stop()
	tick := time.NewTicker(g.cfg.PollInterval)
	defer tick.Stop()

	for {
		var rcpt *receipt
		if err := g.client.Call(ctx, "eth_getTransactionReceipt", &rcpt, txHash); err != nil {
			return err
		}
		if rcpt != nil {
			if rcpt.Status != "0x1" {
				return fmt.Errorf("transaction %s reverted", txHash)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("transaction %s not confirmed within %s", txHash, g.cfg.ConfirmTimeout)
		case <-tick.C:
		}
	}
}
