// Package chain talks JSON-RPC to the network fullnode: epoch reads and
// transaction execution. Timeouts are delegated to the HTTP transport and
// there is no automatic retry; stale-epoch or stale-proof failures must not
// be re-attempted with the same inputs.
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

type Client struct {
	rpcURL     string
	httpClient *http.Client
}

func NewClient(rpcURL string) *Client {
	return &Client{
		rpcURL: rpcURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type rpcRequest struct {
	Jsonrpc string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	body, err := json.Marshal(rpcRequest{
		Jsonrpc: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("fail to marshal rpc request, err: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("fail to build rpc request, err: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fail to call %s, err: %w", method, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fail to call %s: %s", method, resp.Status)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("fail to read rpc response, err: %w", err)
	}
	var rpcResp rpcResponse
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return fmt.Errorf("fail to unmarshal rpc response, err: %w", err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("fail to unmarshal %s result, err: %w", method, err)
		}
	}
	return nil
}

// CurrentEpoch reads the live epoch from the latest system state.
func (c *Client) CurrentEpoch(ctx context.Context) (uint64, error) {
	var state struct {
		Epoch string `json:"epoch"`
	}
	if err := c.call(ctx, "suix_getLatestSuiSystemState", []interface{}{}, &state); err != nil {
		return 0, err
	}
	epoch, err := strconv.ParseUint(state.Epoch, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("fail to parse epoch %q, err: %w", state.Epoch, err)
	}
	return epoch, nil
}

// ExecuteStatus is the on-chain effects status of a submitted transaction.
type ExecuteStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type ExecuteEffects struct {
	Status  ExecuteStatus `json:"status"`
	GasUsed struct {
		ComputationCost         string `json:"computationCost"`
		StorageCost             string `json:"storageCost"`
		StorageRebate           string `json:"storageRebate"`
		NonRefundableStorageFee string `json:"nonRefundableStorageFee"`
	} `json:"gasUsed"`
}

type ExecuteResponse struct {
	Digest  string         `json:"digest"`
	Effects ExecuteEffects `json:"effects"`
}

// ExecuteTransaction submits signed transaction bytes, requesting effects,
// events and object changes, and waits for local execution confirmation.
func (c *Client) ExecuteTransaction(ctx context.Context, txBytes string, signatures []string) (*ExecuteResponse, error) {
	options := map[string]bool{
		"showEffects":       true,
		"showEvents":        true,
		"showObjectChanges": true,
	}
	var resp ExecuteResponse
	err := c.call(ctx, "sui_executeTransactionBlock",
		[]interface{}{txBytes, signatures, options, "WaitForLocalExecution"}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
