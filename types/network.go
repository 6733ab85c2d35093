package types

// Network represents supported blockchain networks
type Network string

const (
	NetworkBase        Network = "base"
	NetworkBaseSepolia Network = "base-sepolia" // testnet
	NetworkPolygon     Network = "polygon"
	NetworkPolygonAmoy Network = "polygon-amoy" // testnet
)

// chainIDs maps a logical network identifier to its EVM chain ID.
var chainIDs = map[Network]int64{
	NetworkBase:        8453,
	NetworkBaseSepolia: 84532,
	NetworkPolygon:     137,
	NetworkPolygonAmoy: 80002,
}

// ChainID returns the EVM chain ID for the network, or 0 if the
// network is not supported.
func (n Network) ChainID() int64 {
	return chainIDs[n]
}

// Known reports whether the network is one this module supports.
func (n Network) Known() bool {
	_, ok := chainIDs[n]
	return ok
}

func (n Network) IsTestnet() bool {
	return n == NetworkBaseSepolia || n == NetworkPolygonAmoy
}

func (n Network) String() string {
	return string(n)
}

// Networks returns all supported networks.
func Networks() []Network {
	return []Network{NetworkBase, NetworkBaseSepolia, NetworkPolygon, NetworkPolygonAmoy}
}
