// internal/registry/parameters.go
package registry

// Ranges are raw values. Temperatures are tenths of a degree.
var parameterTable = []Descriptor{
	field(0, "ID_Transfert_LuxNet", KindInt32),
	kelvin(1, "ID_Einst_WK_akt").as("P0001_HEATING_TARGET_CORRECTION").writable(-50, 50),
	celsius(2, "ID_Einst_BWS_akt").as("P0002_DHW_TARGET_TEMPERATURE").writable(300, 650),
	field(3, "ID_Ba_Hz_akt", KindEnum).as("P0003_MODE_HEATING").enum(HeatingModes).writable(0, 4),
	field(4, "ID_Ba_Bw_akt", KindEnum).as("P0004_MODE_DHW").enum(HeatingModes).writable(0, 4),
	field(5, "ID_Ba_Al_akt", KindEnum).as("P0005_MODE_MIXING_CIRCUIT").enum(HeatingModes),
	flag(6, "ID_SU_FrkdHz"),
	flag(7, "ID_SU_FrkdBw"),
	flag(8, "ID_SU_FrkdAl"),
	field(9, "ID_Einst_HReg_akt", KindInt32),
	celsius(10, "ID_Einst_HzHwMAt_akt"),
	celsius(11, "ID_Einst_HzHwHKE_akt").as("P0011_HEATING_CURVE_END_TEMPERATURE").writable(200, 700),
	celsius(12, "ID_Einst_HzHKRANH_akt").as("P0012_HEATING_CURVE_PARALLEL_SHIFT_TEMPERATURE").writable(50, 350),
	kelvin(13, "ID_Einst_HzHKRABS_akt").as("P0013_HEATING_CURVE_NIGHT_TEMPERATURE").writable(-150, 100),
	celsius(14, "ID_Einst_HzMK1E_akt").as("P0014_HEATING_CURVE_CIRCUIT1_END_TEMPERATURE").writable(200, 700),
	celsius(15, "ID_Einst_HzMK1ANH_akt").as("P0015_HEATING_CURVE_CIRCUIT1_PARALLEL_SHIFT_TEMPERATURE").writable(50, 350),
	kelvin(16, "ID_Einst_HzMK1ABS_akt").as("P0016_HEATING_CURVE_CIRCUIT1_NIGHT_TEMPERATURE").writable(-150, 100),
	celsius(17, "ID_Einst_HzFtRl_akt"),
	celsius(18, "ID_Einst_HzFtMK1Vl_akt"),
	celsius(19, "ID_Einst_SUBW_akt"),
	flag(20, "ID_Einst_BwTDI_akt_MO").as("P0020_DHW_THERMAL_DESINFECTION_MONDAY").writable(0, 1),
	flag(21, "ID_Einst_BwTDI_akt_DI").as("P0021_DHW_THERMAL_DESINFECTION_TUESDAY").writable(0, 1),
	flag(22, "ID_Einst_BwTDI_akt_MI").as("P0022_DHW_THERMAL_DESINFECTION_WEDNESDAY").writable(0, 1),
	flag(23, "ID_Einst_BwTDI_akt_DO").as("P0023_DHW_THERMAL_DESINFECTION_THURSDAY").writable(0, 1),
	flag(24, "ID_Einst_BwTDI_akt_FR").as("P0024_DHW_THERMAL_DESINFECTION_FRIDAY").writable(0, 1),
	flag(25, "ID_Einst_BwTDI_akt_SA").as("P0025_DHW_THERMAL_DESINFECTION_SATURDAY").writable(0, 1),
	flag(26, "ID_Einst_BwTDI_akt_SO").as("P0026_DHW_THERMAL_DESINFECTION_SUNDAY").writable(0, 1),
	flag(27, "ID_Einst_BwTDI_akt_AL").as("P0027_DHW_THERMAL_DESINFECTION_PERMANENT").writable(0, 1),
	field(28, "ID_Einst_AbtZykMax_akt", KindMinutes).unit("min", 0),
	celsius(47, "ID_Einst_LGST_akt").as("P0047_DHW_THERMAL_DESINFECTION_TARGET").writable(500, 700),
	flag(49, "ID_Einst_Popt_akt").as("P0049_PUMP_OPTIMIZATION").writable(0, 1),
	kelvin(74, "ID_Einst_BWS_Hyst_akt").as("P0074_DHW_HYSTERESIS").writable(10, 300),
	kelvin(88, "ID_Einst_HRHyst_akt").as("P0088_HEATING_HYSTERESIS").writable(5, 30),
	kelvin(89, "ID_Einst_TRErhmax_akt").as("P0089_HEATING_MAX_FLOW_OUT_INCREASE_TEMPERATURE").writable(10, 70),
	celsius(105, "ID_Soll_BWS_akt").as("P0105_DHW_TARGET_TEMPERATURE"),
	field(108, "ID_Einst_BA_Kuehl_akt", KindEnum).as("P0108_MODE_COOLING").enum(CoolingModes).writable(0, 1),
	celsius(110, "ID_Einst_KuehlFreig_akt").as("P0110_COOLING_OUTDOOR_TEMP_THRESHOLD").writable(180, 300),
	celsius(132, "ID_Einst_KuhlTemp_SolltempMK1").as("P0132_COOLING_TARGET_TEMPERATURE_MK1").writable(180, 250),
	flag(699, "ID_Einst_Heizgrenze").as("P0699_HEATING_THRESHOLD").writable(0, 1),
	celsius(700, "ID_Einst_Heizgrenze_Temp").as("P0700_HEATING_THRESHOLD_TEMPERATURE").writable(50, 300),
	field(850, "ID_Einst_Kuhl_Zeit_Ein_akt", KindInt32).as("P0850_COOLING_START_DELAY_HOURS").unit("h", 0.1).writable(0, 120),
	field(851, "ID_Einst_Kuhl_Zeit_Aus_akt", KindInt32).as("P0851_COOLING_STOP_DELAY_HOURS").unit("h", 0.1).writable(0, 120),
	flag(860, "ID_Einst_Fernwartung_akt").as("P0860_REMOTE_MAINTENANCE").writable(0, 1),
	field(864, "ID_Einst_Popt_Nachlauf_akt", KindMinutes).as("P0864_PUMP_OPTIMIZATION_TIME").unit("min", 0).writable(5, 180),
	flag(869, "ID_Einst_Effizienzpumpe_akt").as("P0869_EFFICIENCY_PUMP").writable(0, 1),
	flag(870, "ID_Einst_Waermemenge_akt").as("P0870_AMOUNT_COUNTER_ACTIVE"),
	field(874, "ID_WP_SerienNummer_DATUM", KindInt32).as("P0874_SERIAL_NUMBER"),
	field(875, "ID_WP_SerienNummer_HEX", KindInt32).as("P0875_SERIAL_NUMBER_MODEL"),
	flag(1087, "Unknown_Parameter_1087").as("P1087_SILENT_MODE").writable(0, 1),
	field(1119, "Unknown_Parameter_1119", KindInt32).as("P1119_LAST_DEFROST_TIMESTAMP"),
	field(1136, "Unknown_Parameter_1136", KindInt32).as("P1136_HEAT_ENERGY_INPUT").unit("kWh", 0.01),
	field(1137, "Unknown_Parameter_1137", KindInt32).as("P1137_DHW_ENERGY_INPUT").unit("kWh", 0.01),
}
