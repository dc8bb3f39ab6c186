package remote

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/dework-labs/marketsync/internal/store"
)

// masterABI covers the read-only getters of the master marketplace
// contract that the indexer mirrors.
const masterABI = `[
	{"type":"function","name":"getAdmin","stateMutability":"view",
	 "inputs":[{"name":"index","type":"uint256"}],
	 "outputs":[
		{"name":"addr","type":"address"},
		{"name":"status","type":"uint8"}]},
	{"type":"function","name":"getUser","stateMutability":"view",
	 "inputs":[{"name":"index","type":"uint256"}],
	 "outputs":[
		{"name":"addr","type":"address"},
		{"name":"status","type":"uint8"},
		{"name":"language","type":"string"},
		{"name":"name","type":"string"}]},
	{"type":"function","name":"getOrder","stateMutability":"view",
	 "inputs":[{"name":"index","type":"uint256"}],
	 "outputs":[
		{"name":"addr","type":"address"},
		{"name":"status","type":"uint8"},
		{"name":"category","type":"string"},
		{"name":"language","type":"string"},
		{"name":"price","type":"uint256"},
		{"name":"customer","type":"address"},
		{"name":"freelancer","type":"address"},
		{"name":"name","type":"string"},
		{"name":"description","type":"string"},
		{"name":"technicalTask","type":"string"}]},
	{"type":"function","name":"getCounts","stateMutability":"view",
	 "inputs":[],
	 "outputs":[
		{"name":"admins","type":"uint256"},
		{"name":"users","type":"uint256"},
		{"name":"orders","type":"uint256"}]}
]`

// Status codes as emitted by the contracts.
var (
	adminStatusNames = map[uint8]string{
		0: store.AdminStatusActive,
		1: store.AdminStatusRevoked,
	}
	userStatusNames = map[uint8]string{
		0: store.UserStatusModeration,
		1: store.UserStatusActive,
		2: store.UserStatusBanned,
	}
	orderStatusNames = map[uint8]string{
		0: store.OrderStatusDraft,
		1: store.OrderStatusActive,
		2: store.OrderStatusProcessing,
		3: store.OrderStatusCompleted,
		4: store.OrderStatusCancelled,
	}
)

// Counts holds the entity counts reported by the master contract.
type Counts struct {
	Admins uint64
	Users  uint64
	Orders uint64
}

// Reader reads marketplace entities from the master contract. Every
// entity read stamps LastSync with the latest block header time, which
// is the freshness the chain can attest to for the returned data.
type Reader struct {
	client *Client
	master ethcommon.Address
	abi    abi.ABI
}

// NewReader creates a Reader bound to the master contract address.
func NewReader(client *Client, masterAddress string) (*Reader, error) {
	parsed, err := abi.JSON(strings.NewReader(masterABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse master contract ABI: %w", err)
	}

	if !ethcommon.IsHexAddress(masterAddress) {
		return nil, fmt.Errorf("invalid master contract address %q", masterAddress)
	}

	return &Reader{
		client: client,
		master: ethcommon.HexToAddress(masterAddress),
		abi:    parsed,
	}, nil
}

func (r *Reader) call(ctx context.Context, method string, args ...any) ([]any, error) {
	input, err := r.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", method, err)
	}

	output, err := r.client.CallContract(ctx, ethereum.CallMsg{To: &r.master, Data: input})
	if err != nil {
		return nil, fmt.Errorf("%s call failed: %w", method, err)
	}

	values, err := r.abi.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", method, err)
	}

	return values, nil
}

func (r *Reader) headerTime(ctx context.Context) (time.Time, error) {
	header, err := r.client.LatestHeader(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get latest header: %w", err)
	}
	return time.Unix(int64(header.Time), 0).UTC(), nil
}

// ReadAdmin refreshes a from the contract. a.Index selects the entity.
func (r *Reader) ReadAdmin(ctx context.Context, a *store.Admin) error {
	at, err := r.headerTime(ctx)
	if err != nil {
		return err
	}

	values, err := r.call(ctx, "getAdmin", new(big.Int).SetUint64(a.Index))
	if err != nil {
		return err
	}

	a.Address = values[0].(ethcommon.Address).Hex()
	a.Status = statusName(adminStatusNames, values[1].(uint8))
	a.LastSync = at

	return nil
}

// ReadUser refreshes u from the contract. u.Index selects the entity.
func (r *Reader) ReadUser(ctx context.Context, u *store.User) error {
	at, err := r.headerTime(ctx)
	if err != nil {
		return err
	}

	values, err := r.call(ctx, "getUser", new(big.Int).SetUint64(u.Index))
	if err != nil {
		return err
	}

	u.Address = values[0].(ethcommon.Address).Hex()
	u.Status = statusName(userStatusNames, values[1].(uint8))
	u.Language = values[2].(string)
	u.Name = values[3].(string)
	u.LastSync = at

	return nil
}

// ReadOrder refreshes o from the contract. o.Index selects the entity.
// Content hashes for the free-text fields are computed locally; they key
// the translation rows produced by the translation collaborator.
func (r *Reader) ReadOrder(ctx context.Context, o *store.Order) error {
	at, err := r.headerTime(ctx)
	if err != nil {
		return err
	}

	values, err := r.call(ctx, "getOrder", new(big.Int).SetUint64(o.Index))
	if err != nil {
		return err
	}

	o.Address = values[0].(ethcommon.Address).Hex()
	o.Status = statusName(orderStatusNames, values[1].(uint8))
	o.Category = values[2].(string)
	o.Language = values[3].(string)
	o.Price = values[4].(*big.Int).Uint64()
	o.CustomerAddress = values[5].(ethcommon.Address).Hex()
	o.FreelancerAddress = values[6].(ethcommon.Address).Hex()
	o.Name = values[7].(string)
	o.Description = values[8].(string)
	o.TechnicalTask = values[9].(string)
	o.NameHash = contentHash(o.Name)
	o.DescriptionHash = contentHash(o.Description)
	o.TechnicalTaskHash = contentHash(o.TechnicalTask)
	o.LastSync = at

	return nil
}

// Counts reads the total number of entities registered on the master
// contract.
func (r *Reader) Counts(ctx context.Context) (*Counts, error) {
	values, err := r.call(ctx, "getCounts")
	if err != nil {
		return nil, err
	}

	return &Counts{
		Admins: values[0].(*big.Int).Uint64(),
		Users:  values[1].(*big.Int).Uint64(),
		Orders: values[2].(*big.Int).Uint64(),
	}, nil
}

func statusName(names map[uint8]string, code uint8) string {
	if name, ok := names[code]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", code)
}

func contentHash(text string) string {
	if text == "" {
		return ""
	}
	return crypto.Keccak256Hash([]byte(text)).Hex()
}
