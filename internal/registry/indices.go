// internal/registry/indices.go
package registry

// Well-known parameter indices.
const (
	ParamHeatingTargetCorrection = 1
	ParamDHWTargetTemperature    = 2
	ParamModeHeating             = 3
	ParamModeDHW                 = 4
	ParamModeCooling             = 108
	ParamSerialDate              = 874
	ParamSerialHex               = 875
)

// Well-known calculation indices.
const (
	CalcFlowInTemperature       = 10
	CalcFlowOutTemperature      = 11
	CalcOutdoorTemperature      = 15
	CalcDHWTemperature          = 17
	CalcEVU                     = 31
	CalcCompressor              = 44
	CalcAdditionalHeatGenerator = 48
	CalcTimerSCBOff             = 71
	CalcTimerSCBOn              = 72
	CalcHeatpumpCode            = 78
	CalcOperationMode           = 80
	CalcFirmwareFirst           = 81
	CalcFirmwareLast            = 90
	CalcStatusLine1             = 117
	CalcStatusLine2             = 118
	CalcStatusLine3             = 119
	CalcStatusTime              = 120
	CalcCompressorHeater        = 182
	CalcHeatOutput              = 257
)
