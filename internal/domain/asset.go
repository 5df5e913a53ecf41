package domain

import "time"

// AssetType enumerates supported hardware categories.
type AssetType string

const (
	AssetTypeLaptop     AssetType = "LAPTOP"
	AssetTypeSmartphone AssetType = "SMARTPHONE"
	AssetTypeMonitor    AssetType = "MONITOR"
	AssetTypeTablet     AssetType = "TABLET"
	AssetTypePrinter    AssetType = "PRINTER"
	AssetTypeAccessory  AssetType = "ACCESSORY"
)

// Valid reports whether the asset type is a known value.
func (t AssetType) Valid() bool {
	switch t {
	case AssetTypeLaptop, AssetTypeSmartphone, AssetTypeMonitor,
		AssetTypeTablet, AssetTypePrinter, AssetTypeAccessory:
		return true
	}
	return false
}

// Asset is an inventory record. Deactivation is one-way: IsActive
// transitions true to false and never back.
type Asset struct {
	ID           string
	AssetType    AssetType
	Vendor       string
	Model        string
	SerialNumber string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
