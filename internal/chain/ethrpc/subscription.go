package ethrpc

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/gorilla/websocket"

	"cointribute/internal/chain"
)

// SubscribeRegistrations opens a websocket log subscription filtered on the
// CharityRegistered topic and streams decoded events. The channel closes when
// the context is cancelled or the socket fails; missed events are picked up
// by the next backlog scan, so no reconnect loop lives here.
func (g *Gateway) SubscribeRegistrations(ctx context.Context) (<-chan chain.Registration, func(), error) {
	if g.cfg.WSEndpoint == "" {
		return nil, nil, fmt.Errorf("ethrpc: websocket endpoint is required for subscriptions")
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, g.cfg.WSEndpoint, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", g.cfg.WSEndpoint, err)
	}

	sub := rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "eth_subscribe",
		Params: []any{"logs", map[string]any{
			"address": g.cfg.Contract,
			"topics":  []string{eventTopic(sigRegisteredEvent)},
		}},
	}
	if err := conn.WriteJSON(sub); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("subscribe: %w", err)
	}

	// First frame acknowledges the subscription.
	var ack rpcResponse
	if err := conn.ReadJSON(&ack); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("read subscription ack: %w", err)
	}
	if ack.Error != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("subscribe: %w", ack.Error)
	}

	events := make(chan chain.Registration)
	done := make(chan struct{})
	cancel := func() {
		close(done)
		conn.Close()
	}

	go func() {
		defer close(events)
		for {
			var frame subscriptionFrame
			if err := conn.ReadJSON(&frame); err != nil {
				select {
				case <-done:
				case <-ctx.Done():
				default:
					if g.logger != nil {
						g.logger.ErrorContext(ctx, "event stream closed", "error", err)
					}
				}
				return
			}
			if frame.Method != "eth_subscription" {
				continue
			}
			reg, err := decodeRegistration(frame.Params.Result)
			if err != nil {
				if g.logger != nil {
					g.logger.WarnContext(ctx, "skipping undecodable log", "error", err)
				}
				continue
			}
			select {
			case events <- reg:
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
	}()

	return events, cancel, nil
}

type subscriptionFrame struct {
	Method string `json:"method"`
	Params struct {
		Subscription string          `json:"subscription"`
		Result       json.RawMessage `json:"result"`
	} `json:"params"`
}

type logEntry struct {
	Topics []string `json:"topics"`
	Data   string   `json:"data"`
}

// decodeRegistration unpacks a CharityRegistered log. The charity id and
// registrant are indexed topics; name and timestamp sit in the data blob.
func decodeRegistration(raw json.RawMessage) (chain.Registration, error) {
	var entry logEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return chain.Registration{}, fmt.Errorf("unmarshal log: %w", err)
	}
	if len(entry.Topics) < 3 {
		return chain.Registration{}, fmt.Errorf("expected 3 topics, got %d", len(entry.Topics))
	}

	idBytes, err := decodeHex(entry.Topics[1])
	if err != nil {
		return chain.Registration{}, fmt.Errorf("charity id topic: %w", err)
	}
	registrantBytes, err := decodeHex(entry.Topics[2])
	if err != nil {
		return chain.Registration{}, fmt.Errorf("registrant topic: %w", err)
	}

	data, err := decodeHex(entry.Data)
	if err != nil {
		return chain.Registration{}, fmt.Errorf("log data: %w", err)
	}
	reader := newWordReader(data)
	name, err := reader.stringAt(0, 0)
	if err != nil {
		return chain.Registration{}, fmt.Errorf("event name: %w", err)
	}

	registrant := newWordReader(registrantBytes).addressAt(0)
	return chain.Registration{
		CharityID:  new(big.Int).SetBytes(idBytes).Uint64(),
		Registrant: registrant,
		Name:       name,
		Timestamp:  unixTime(reader.uint64At(1)),
	}, nil
}
