package techem

import (
	"gitlab.com/d21d3q/gotechem/internal/driver"
	"gitlab.com/d21d3q/gotechem/internal/frame"
)

// Water meter variant (version 116). The device type byte separates warm
// from cold water; both share the layout. Counters are reported in units of
// 0.1 m³.
const (
	versionWater        = 0x74
	deviceTypeWarmWater = 0x62
	deviceTypeColdWater = 0x72
)

func init() {
	driver.Register(driver.Detection{
		Manufacturer: ManufacturerTechem,
		Version:      versionWater,
		DeviceTypes:  []byte{deviceTypeWarmWater, deviceTypeColdWater},
	}, decoder{
		name:  "techem-water",
		media: waterMedia,
		layouts: []layout{{
			coding:       0xA2,
			pastDate:     2,
			pastValue:    4,
			currentDate:  6,
			currentValue: 8,
			scale:        0.1,
		}},
	})
}

func waterMedia(t *frame.Telegram) string {
	switch t.Address.DeviceType {
	case deviceTypeWarmWater:
		return "warm water"
	case deviceTypeColdWater:
		return "cold water"
	default:
		return "water"
	}
}
