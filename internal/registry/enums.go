// internal/registry/enums.go
package registry

// Operation mode (calculations.ID_WEB_WP_BZ_akt).
const (
	ModeHeating               = "heating"
	ModeHotWater              = "hot_water"
	ModeSwimmingPoolSolar     = "swimming_pool_solar"
	ModeEVU                   = "evu"
	ModeDefrost               = "defrost"
	ModeNoRequest             = "no_request"
	ModeHeatingExternalSource = "heating_external_source"
	ModeCooling               = "cooling"
)

var OperationModes = []string{
	ModeHeating,
	ModeHotWater,
	ModeSwimmingPoolSolar,
	ModeEVU,
	ModeDefrost,
	ModeNoRequest,
	ModeHeatingExternalSource,
	ModeCooling,
}

// Main menu status line 1.
// HeatpumpShutdown and CompressorHeater are never reported by the
// controller; they only appear after correction.
const (
	StatusHeatpumpRunning        = "heatpump_running"
	StatusHeatpumpIdle           = "heatpump_idle"
	StatusHeatpumpComing         = "heatpump_coming"
	StatusErrorcodeSlot0         = "errorcode_slot_0"
	StatusDefrost                = "defrost"
	StatusWaitingOnLinConnection = "waiting_on_lin_connection"
	StatusCompressorHeatingUp    = "compressor_heating_up"
	StatusPumpForerun            = "pump_forerun"
	StatusHeatpumpShutdown       = "heatpump_shutdown"
	StatusCompressorHeater       = "compressor_heater"
)

var StatusLine1Options = []string{
	StatusHeatpumpRunning,
	StatusHeatpumpIdle,
	StatusHeatpumpComing,
	StatusErrorcodeSlot0,
	StatusDefrost,
	StatusWaitingOnLinConnection,
	StatusCompressorHeatingUp,
	StatusPumpForerun,
}

var StatusLine2Options = []string{"since", "in"}

var StatusLine3Options = []string{
	0:  "heating",
	1:  "no_request",
	2:  "grid_switch_on_delay",
	3:  "cycle_lock",
	4:  "lock_time",
	5:  "domestic_water",
	6:  "info_bake_out_program",
	7:  "defrost",
	8:  "pump_forerun",
	9:  "thermal_desinfection",
	10: "cooling",
	12: "swimming_pool_solar",
	13: "heating_external_energy",
	14: "domestic_water_external_energy",
	16: "flow_monitoring",
	17: "second_heat_generator_1_active",
}

// Heating / hot water / cooling operating selection.
var HeatingModes = []string{"automatic", "second_heatsource", "party", "holidays", "off"}

var CoolingModes = []string{"off", "automatic"}

var SwitchoffReasons = []string{
	1:  "heatpump_error",
	2:  "system_error",
	3:  "evu_lock",
	4:  "operation_mode_second_heat_generator",
	5:  "air_defrost",
	6:  "maximal_usage_temperature",
	7:  "minimal_usage_temperature",
	8:  "lower_usage_limit",
	9:  "no_request",
	11: "flow_rate",
	19: "pv_max",
}

var BivalenceLevels = []string{
	1: "one_compressor_allowed_to_run",
	2: "two_compressors_allowed_to_run",
	3: "additional_heat_generator_allowed_to_run",
}

// HeatpumpCodes maps calculations.ID_WEB_Code_WP_akt to the model code.
var HeatpumpCodes = []string{
	"ERC", "SW1", "SW2", "WW1", "WW2", "L1I", "L2I", "L1A", "L2A", "KSW",
	"KLW", "SWC", "LWC", "L2G", "WZS", "L1I407", "L2I407", "L1A407", "L2A407", "L2G407",
	"LWC407", "L1AREV", "L2AREV", "WWC1", "WWC2", "L2G404", "WZW", "L1S", "L1H", "L2H",
	"WZWD", "ERC", "", "", "", "", "", "", "", "",
	"WWB_20", "LD5", "LD7", "SW 37_45", "SW 58_69", "SW 29_56", "LD5 (230V)", "LD7 (230 V)", "LD9", "LD5 REV",
	"LD7 REV", "LD5 REV 230V", "LD7 REV 230V", "LD9 REV 230V", "SW 291", "LW SEC", "HMD 2", "MSW 4", "MSW 6", "MSW 8",
	"MSW 10", "MSW 13", "MSW 16", "MSW 2-6", "MSW 4-16", "LD2AG", "LD 1", "LP5", "LP8", "SWP 1000",
	"SWP 1200", "SWP 1400", "SWP 1800", "SWP 2200", "SWP 2700", "SWP 3300", "SWP 3600", "SWP 4000", "SWP 4500", "LP 12",
}
