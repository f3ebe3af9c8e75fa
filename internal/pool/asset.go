package pool

// Asset selects one side of the pair. Addresses are resolved to an Asset once
// at the API boundary; the arithmetic below only indexes by Asset.
type Asset uint8

const (
	AssetA Asset = iota
	AssetB
)

// Other returns the opposite side of the pair.
func (a Asset) Other() Asset {
	if a == AssetA {
		return AssetB
	}
	return AssetA
}

func (a Asset) String() string {
	if a == AssetA {
		return "A"
	}
	return "B"
}
