// internal/luxtronik/identity.go
package luxtronik

import (
	"fmt"

	"github.com/tamzrod/luxtronik-replicator/internal/registry"
)

const Manufacturer = "Luxtronik"

// DeviceIdentity is stable for the lifetime of one connection.
type DeviceIdentity struct {
	SerialNumber    string          `json:"serial_number" yaml:"serial_number"`
	FirmwareVersion FirmwareVersion `json:"firmware_version" yaml:"firmware_version"`
	ModelCode       string          `json:"model_code" yaml:"model_code"`
	Manufacturer    string          `json:"manufacturer" yaml:"manufacturer"`
}

// DeriveIdentity reads the serial number, model code and firmware from a
// snapshot. It fails when the snapshot does not reach those slots.
func DeriveIdentity(s Snapshot, reg *registry.Registry) (DeviceIdentity, bool) {
	date, ok1 := s.Parameter(registry.ParamSerialDate)
	hex, ok2 := s.Parameter(registry.ParamSerialHex)
	code, ok3 := s.Calculation(registry.CalcHeatpumpCode)
	_, ok4 := s.Calculation(registry.CalcFirmwareLast)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return DeviceIdentity{}, false
	}

	chars := make([]int32, 0, registry.CalcFirmwareLast-registry.CalcFirmwareFirst+1)
	for i := registry.CalcFirmwareFirst; i <= registry.CalcFirmwareLast; i++ {
		v, _ := s.Calculation(i)
		chars = append(chars, v)
	}

	model := fmt.Sprintf("unknown_%d", code)
	if d, ok := reg.Descriptor(registry.Calculations, registry.CalcHeatpumpCode); ok {
		model = d.EnumText(code)
	}

	return DeviceIdentity{
		SerialNumber:    fmt.Sprintf("%d-%x", date, hex),
		FirmwareVersion: NewFirmwareVersion(firmwareFromChars(chars)),
		ModelCode:       model,
		Manufacturer:    Manufacturer,
	}, true
}
