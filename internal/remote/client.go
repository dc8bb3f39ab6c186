package remote

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/dework-labs/marketsync/internal/common"
	"github.com/dework-labs/marketsync/internal/logger"
	"github.com/dework-labs/marketsync/internal/store"
)

// ErrNotConnected is returned by read methods before InitIfNeeded has
// succeeded.
var ErrNotConnected = errors.New("remote client is not connected")

// Compile-time check that Reader satisfies the scheduler's contract surface.
var _ interface {
	ReadAdmin(ctx context.Context, a *store.Admin) error
	ReadUser(ctx context.Context, u *store.User) error
	ReadOrder(ctx context.Context, o *store.Order) error
} = (*Reader)(nil)

// Client manages the RPC connection to the chain node. Dialing is lazy:
// the process starts without a reachable node, and the scheduler keeps
// calling InitIfNeeded on its fast-retry cadence until a dial succeeds.
type Client struct {
	rpcURL string
	log    *logger.Logger

	mu  sync.Mutex
	eth *ethclient.Client
}

// NewClient creates an unconnected Client for the given RPC endpoint.
func NewClient(rpcURL string, log *logger.Logger) *Client {
	return &Client{
		rpcURL: rpcURL,
		log:    log.WithComponent(common.ComponentRemote),
	}
}

// InitIfNeeded dials the RPC endpoint unless a connection already
// exists. Safe for concurrent use.
func (c *Client) InitIfNeeded(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.eth != nil {
		return nil
	}

	eth, err := ethclient.DialContext(ctx, c.rpcURL)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", c.rpcURL, err)
	}

	c.eth = eth
	c.log.Infof("connected to %s", c.rpcURL)

	return nil
}

// Ready reports whether the client is connected.
func (c *Client) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eth != nil
}

// Close closes the underlying connection, if any.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.eth != nil {
		c.eth.Close()
		c.eth = nil
	}
}

func (c *Client) conn() (*ethclient.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.eth == nil {
		return nil, ErrNotConnected
	}
	return c.eth, nil
}

// LatestHeader retrieves the latest block header.
func (c *Client) LatestHeader(ctx context.Context) (*types.Header, error) {
	eth, err := c.conn()
	if err != nil {
		return nil, err
	}
	return eth.HeaderByNumber(ctx, nil)
}

// CallContract executes a read-only contract call against the latest block.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	eth, err := c.conn()
	if err != nil {
		return nil, err
	}
	return eth.CallContract(ctx, msg, nil)
}
