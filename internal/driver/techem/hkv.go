package techem

import (
	"gitlab.com/d21d3q/gotechem/internal/driver"
	"gitlab.com/d21d3q/gotechem/internal/frame"
)

// Heat cost allocator variants. The version byte selects the firmware
// generation; each generation keeps its own coding byte and field offsets.
// Consumption is reported in unitless allocator units.
const (
	versionHKV100 = 0x64
	versionHKV105 = 0x69
	versionHKV94  = 0x94
	deviceTypeHKV = 0x80
	mediaHKV      = "heat cost allocation"
)

func init() {
	driver.Register(driver.Detection{
		Manufacturer: ManufacturerTechem,
		Version:      versionHKV100,
		DeviceTypes:  []byte{deviceTypeHKV},
	}, decoder{
		name:  "techem-hkv100",
		media: func(*frame.Telegram) string { return mediaHKV },
		layouts: []layout{{
			coding:       0xA0,
			pastDate:     2,
			pastValue:    4,
			currentDate:  6,
			currentValue: 8,
			scale:        1,
		}},
	})

	driver.Register(driver.Detection{
		Manufacturer: ManufacturerTechem,
		Version:      versionHKV105,
		DeviceTypes:  []byte{deviceTypeHKV},
	}, decoder{
		name:  "techem-hkv105",
		media: func(*frame.Telegram) string { return mediaHKV },
		layouts: []layout{{
			coding:       0xA0,
			pastDate:     2,
			pastValue:    4,
			currentDate:  6,
			currentValue: 8,
			scale:        1,
			temperature:  true,
			roomTemp:     10,
			radiatorTemp: 12,
		}},
	})

	// v94 shifts the current value by one byte and the temperatures with it.
	driver.Register(driver.Detection{
		Manufacturer: ManufacturerTechem,
		Version:      versionHKV94,
	}, decoder{
		name:  "techem-hkv94",
		media: func(*frame.Telegram) string { return mediaHKV },
		layouts: []layout{{
			coding:       0xA2,
			pastDate:     2,
			pastValue:    4,
			currentDate:  6,
			currentValue: 9,
			scale:        1,
			temperature:  true,
			roomTemp:     11,
			radiatorTemp: 13,
		}},
	})
}
