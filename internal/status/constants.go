// internal/status/constants.go
package status

// Device Status Block layout constants.
// These values define the mirror layout and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of register slots per controller.
const SlotsPerDevice = 20

// ---- SLOT INDICES ----

// SlotHealthCode holds the controller link health.
const SlotHealthCode = 0

// SlotLastErrorCode holds the code of the last failed cycle.
const SlotLastErrorCode = 1

// SlotSecondsInError holds how long (in seconds) the link has been unhealthy.
const SlotSecondsInError = 2

// ---- RESERVED RANGE ----

// Slots 3-10 are reserved.
const (
	SlotReservedStart = 3
	SlotReservedEnd   = 10
)

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
// The name always sits at the end of the block.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for the name.
const DeviceNameMaxChars = 16

// ---- HEALTH CODES ----

// HealthUnknown is the state before the first cycle finished.
const HealthUnknown uint16 = 0

// HealthOK means the last cycle published a snapshot.
const HealthOK uint16 = 1

// HealthError means the last cycle failed.
const HealthError uint16 = 2
