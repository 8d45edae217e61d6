package rpc

import (
	"context"
	"encoding/json"
	"strings"

	sdkmath "cosmossdk.io/math"
)

// Info is the result of getinfo.
type Info struct {
	Version         string      `json:"version"`
	NodeVersion     int64       `json:"nodeversion"`
	Edition         string      `json:"edition,omitempty"`
	ProtocolVersion int64       `json:"protocolversion"`
	ChainName       string      `json:"chainname"`
	Description     string      `json:"description"`
	Protocol        string      `json:"protocol"`
	Port            int         `json:"port"`
	SetupBlocks     int64       `json:"setupblocks"`
	NodeAddress     string      `json:"nodeaddress"`
	BurnAddress     string      `json:"burnaddress"`
	IncomingPaused  bool        `json:"incomingpaused"`
	MiningPaused    bool        `json:"miningpaused"`
	WalletVersion   int64       `json:"walletversion"`
	Balance         json.Number `json:"balance"`
	Blocks          int64       `json:"blocks"`
	TimeOffset      int64       `json:"timeoffset"`
	Connections     int         `json:"connections"`
	Proxy           string      `json:"proxy"`
	Difficulty      float64     `json:"difficulty"`
	Testnet         bool        `json:"testnet"`
	KeypoolSize     int64       `json:"keypoolsize"`
	Errors          string      `json:"errors"`
}

// Permission is one entry of listpermissions.
type Permission struct {
	Address    string          `json:"address"`
	For        json.RawMessage `json:"for"`
	Type       string          `json:"type"`
	StartBlock int64           `json:"startblock"`
	EndBlock   int64           `json:"endblock"`
	Admins     []string        `json:"admins,omitempty"`
	Pending    []any           `json:"pending,omitempty"`
}

// GetInfo returns general information about the node and its chain.
func (c *Client) GetInfo(ctx context.Context) Result[Info] {
	return Call[Info](ctx, c, "getinfo")
}

// GetBlockchainParams returns the chain's parameter set.
func (c *Client) GetBlockchainParams(ctx context.Context, displayNames bool) Result[map[string]any] {
	return Call[map[string]any](ctx, c, "getblockchainparams", Bool(displayNames))
}

// VerifyPermission reports whether address holds permission.
func (c *Client) VerifyPermission(ctx context.Context, address, permission string) Result[bool] {
	return Call[bool](ctx, c, "verifypermission", String(address), String(permission))
}

// ListPermissions lists grants filtered by permission and address. Empty
// filters match everything.
func (c *Client) ListPermissions(ctx context.Context, permissions, addresses []string, verbose bool) Result[[]Permission] {
	params := []Param{joined(permissions), joined(addresses), Absent()}
	if verbose {
		params[2] = Bool(true)
	}
	return Call[[]Permission](ctx, c, "listpermissions", params...)
}

func (c *Client) GetNewAddress(ctx context.Context) Result[string] {
	return Call[string](ctx, c, "getnewaddress")
}

// SignMessage signs message with the key of addressOrKey.
func (c *Client) SignMessage(ctx context.Context, addressOrKey, message string) Result[string] {
	return Call[string](ctx, c, "signmessage", String(addressOrKey), Message(message))
}

func (c *Client) VerifyMessage(ctx context.Context, address, signature, message string) Result[bool] {
	return Call[bool](ctx, c, "verifymessage", String(address), String(signature), Message(message))
}

// SendToAddress sends amount of the native currency and returns the txid.
// Comments are optional; an empty comment followed by a comment-to is sent
// as a placeholder.
func (c *Client) SendToAddress(ctx context.Context, address string, amount sdkmath.LegacyDec, comment, commentTo string) Result[string] {
	return Call[string](ctx, c, "sendtoaddress",
		String(address), Decimal(amount), optString(comment), optString(commentTo))
}

// Stop asks the node behind the client to shut down.
func (c *Client) Stop(ctx context.Context) Result[Unit] {
	return Call[Unit](ctx, c, "stop")
}

func joined(values []string) Param {
	if len(values) == 0 {
		return Absent()
	}
	return String(strings.Join(values, ","))
}

func optString(s string) Param {
	if s == "" {
		return Absent()
	}
	return String(s)
}
