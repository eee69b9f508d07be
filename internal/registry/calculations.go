// internal/registry/calculations.go
package registry

func seconds(index int, name string) Descriptor {
	return field(index, name, KindSeconds).unit("s", 0)
}

var calculationTable = []Descriptor{
	celsius(10, "ID_WEB_Temperatur_TVL").as("C0010_FLOW_IN_TEMPERATURE"),
	celsius(11, "ID_WEB_Temperatur_TRL").as("C0011_FLOW_OUT_TEMPERATURE"),
	celsius(12, "ID_WEB_Sollwert_TRL_HZ").as("C0012_FLOW_OUT_TEMPERATURE_TARGET"),
	celsius(13, "ID_WEB_Temperatur_TRL_ext").as("C0013_FLOW_OUT_TEMPERATURE_EXTERNAL"),
	celsius(14, "ID_WEB_Temperatur_THG").as("C0014_HOT_GAS_TEMPERATURE"),
	celsius(15, "ID_WEB_Temperatur_TA").as("C0015_OUTDOOR_TEMPERATURE"),
	celsius(16, "ID_WEB_Mitteltemperatur").as("C0016_OUTDOOR_TEMPERATURE_AVERAGE"),
	celsius(17, "ID_WEB_Temperatur_TBW").as("C0017_DHW_TEMPERATURE"),
	celsius(18, "ID_WEB_Einst_BWS_akt").as("C0018_DHW_TEMPERATURE_TARGET"),
	celsius(19, "ID_WEB_Temperatur_TWE").as("C0019_HEAT_SOURCE_INPUT_TEMPERATURE"),
	celsius(20, "ID_WEB_Temperatur_TWA").as("C0020_HEAT_SOURCE_OUTPUT_TEMPERATURE"),
	celsius(21, "ID_WEB_Temperatur_TFB1").as("C0021_CIRCUIT1_TEMPERATURE"),
	celsius(22, "ID_WEB_Sollwert_TVL_MK1").as("C0022_CIRCUIT1_TARGET_TEMPERATURE"),
	celsius(23, "ID_WEB_Temperatur_RFV").as("C0023_ROOM_TEMPERATURE"),
	celsius(24, "ID_WEB_Temperatur_TFB2").as("C0024_CIRCUIT2_TEMPERATURE"),
	celsius(25, "ID_WEB_Sollwert_TVL_MK2").as("C0025_CIRCUIT2_TARGET_TEMPERATURE"),
	celsius(26, "ID_WEB_Temperatur_TSK").as("C0026_SOLAR_COLLECTOR_TEMPERATURE"),
	celsius(27, "ID_WEB_Temperatur_TSS").as("C0027_SOLAR_BUFFER_TEMPERATURE"),
	celsius(28, "ID_WEB_Temperatur_TEE").as("C0028_EXTERNAL_ENERGY_TEMPERATURE"),

	flag(29, "ID_WEB_ASDin").as("C0029_DEFROST_END_FLOW_OKAY"),
	flag(30, "ID_WEB_BWTin").as("C0030_DHW_THERMOSTAT"),
	flag(31, "ID_WEB_EVUin").as("C0031_EVU_UNLOCKED"),
	flag(32, "ID_WEB_HDin").as("C0032_HIGH_PRESSURE_OK"),
	flag(33, "ID_WEB_MOTin").as("C0033_MOTOR_PROTECTION_OK"),
	flag(34, "ID_WEB_NDin").as("C0034_LOW_PRESSURE_OK"),
	flag(35, "ID_WEB_PEXin").as("C0035_EXTERNAL_CONSTANT_POTENTIOSTAT"),
	flag(36, "ID_WEB_SWTin").as("C0036_SWIMMING_POOL_THERMOSTAT"),
	flag(37, "ID_WEB_AVout").as("C0037_DEFROST_VALVE"),
	flag(38, "ID_WEB_BUPout").as("C0038_DHW_RECIRCULATION_PUMP"),
	flag(39, "ID_WEB_HUPout").as("C0039_CIRCULATION_PUMP_HEATING"),
	flag(40, "ID_WEB_MA1out").as("C0040_MIXER1_OPENED"),
	flag(41, "ID_WEB_MZ1out").as("C0041_MIXER1_CLOSED"),
	flag(42, "ID_WEB_VENout").as("C0042_VENTILATION"),
	flag(43, "ID_WEB_VBOout").as("C0043_PUMP_FLOW"),
	flag(44, "ID_WEB_VD1out").as("C0044_COMPRESSOR"),
	flag(45, "ID_WEB_VD2out").as("C0045_COMPRESSOR2"),
	flag(46, "ID_WEB_ZIPout").as("C0046_DHW_CIRCULATION_PUMP"),
	flag(47, "ID_WEB_ZUPout").as("C0047_ADDITIONAL_CIRCULATION_PUMP"),
	flag(48, "ID_WEB_ZW1out").as("C0048_ADDITIONAL_HEAT_GENERATOR"),
	flag(49, "ID_WEB_ZW2SSTout").as("C0049_DISTURBANCE_OUTPUT"),
	flag(50, "ID_WEB_ZW3SSTout").as("C0050_ADDITIONAL_HEAT_GENERATOR3"),
	flag(51, "ID_WEB_FP2out").as("C0051_CIRCUIT2_PUMP"),
	flag(52, "ID_WEB_SLPout").as("C0052_SOLAR_PUMP"),
	flag(53, "ID_WEB_SUPout").as("C0053_SWIMMING_POOL_PUMP"),
	flag(54, "ID_WEB_MZ2out").as("C0054_MIXER2_CLOSED"),
	flag(55, "ID_WEB_MA2out").as("C0055_MIXER2_OPENED"),

	seconds(56, "ID_WEB_Zaehler_BetrZeitVD1").as("C0056_COMPRESSOR1_OPERATION_HOURS"),
	field(57, "ID_WEB_Zaehler_BetrZeitImpVD1", KindInt32).as("C0057_COMPRESSOR1_IMPULSES"),
	seconds(58, "ID_WEB_Zaehler_BetrZeitVD2").as("C0058_COMPRESSOR2_OPERATION_HOURS"),
	field(59, "ID_WEB_Zaehler_BetrZeitImpVD2", KindInt32).as("C0059_COMPRESSOR2_IMPULSES"),
	seconds(60, "ID_WEB_Zaehler_BetrZeitZWE1").as("C0060_ADDITIONAL_HEAT_GENERATOR_OPERATION_HOURS"),
	seconds(61, "ID_WEB_Zaehler_BetrZeitZWE2").as("C0061_ADDITIONAL_HEAT_GENERATOR2_OPERATION_HOURS"),
	seconds(62, "ID_WEB_Zaehler_BetrZeitZWE3").as("C0062_ADDITIONAL_HEAT_GENERATOR3_OPERATION_HOURS"),
	seconds(63, "ID_WEB_Zaehler_BetrZeitWP").as("C0063_OPERATION_HOURS"),
	seconds(64, "ID_WEB_Zaehler_BetrZeitHz").as("C0064_OPERATION_HOURS_HEATING"),
	seconds(65, "ID_WEB_Zaehler_BetrZeitBW").as("C0065_DHW_OPERATION_HOURS"),
	seconds(66, "ID_WEB_Zaehler_BetrZeitKue").as("C0066_OPERATION_HOURS_COOLING"),
	seconds(67, "ID_WEB_Time_WPein_akt").as("C0067_TIMER_HEATPUMP_ON"),
	seconds(68, "ID_WEB_Time_ZWE1_akt").as("C0068_TIMER_ADD_HEAT_GENERATOR_ON"),
	seconds(69, "ID_WEB_Time_ZWE2_akt").as("C0069_TIMER_ADD_HEAT_GENERATOR2_ON"),
	seconds(70, "ID_WEB_Timer_EinschVerz").as("C0070_TIMER_NET_INPUT_DELAY"),
	seconds(71, "ID_WEB_Time_SSPAUS_akt").as("C0071_TIMER_SCB_OFF"),
	seconds(72, "ID_WEB_Time_SSPEIN_akt").as("C0072_TIMER_SCB_ON"),
	seconds(73, "ID_WEB_Time_VDStd_akt").as("C0073_TIMER_COMPRESSOR_OFF"),
	seconds(74, "ID_WEB_Time_HRM_akt").as("C0074_TIMER_MIXER1_HEAT"),
	seconds(75, "ID_WEB_Time_HRW_akt").as("C0075_TIMER_MIXER1_DHW"),
	seconds(76, "ID_WEB_Time_LGS_akt").as("C0076_TIMER_THERMAL_DESINFECTION"),
	seconds(77, "ID_WEB_Time_SBW_akt").as("C0077_TIMER_DHW_LOCK"),

	field(78, "ID_WEB_Code_WP_akt", KindEnum).as("C0078_MODEL_CODE").enum(HeatpumpCodes),
	field(79, "ID_WEB_BIV_Stufe_akt", KindEnum).as("C0079_BIVALENCE_LEVEL").enum(BivalenceLevels),
	field(80, "ID_WEB_WP_BZ_akt", KindEnum).as("C0080_STATUS").enum(OperationModes),
	field(81, "ID_WEB_SoftStand_0", KindFirmwareChars).as("C0081_FIRMWARE_VERSION"),
	field(82, "ID_WEB_SoftStand_1", KindFirmwareChars),
	field(83, "ID_WEB_SoftStand_2", KindFirmwareChars),
	field(84, "ID_WEB_SoftStand_3", KindFirmwareChars),
	field(85, "ID_WEB_SoftStand_4", KindFirmwareChars),
	field(86, "ID_WEB_SoftStand_5", KindFirmwareChars),
	field(87, "ID_WEB_SoftStand_6", KindFirmwareChars),
	field(88, "ID_WEB_SoftStand_7", KindFirmwareChars),
	field(89, "ID_WEB_SoftStand_8", KindFirmwareChars),
	field(90, "ID_WEB_SoftStand_9", KindFirmwareChars),
	field(91, "ID_WEB_AdresseIP_akt", KindInt32),
	field(92, "ID_WEB_SubNetMask_akt", KindInt32),
	field(93, "ID_WEB_Add_Broadcast", KindInt32),
	field(94, "ID_WEB_Add_StdGateway", KindInt32),

	field(95, "ID_WEB_ERROR_Time0", KindInt32).as("C0095_ERROR_TIME"),
	field(96, "ID_WEB_ERROR_Time1", KindInt32),
	field(97, "ID_WEB_ERROR_Time2", KindInt32),
	field(98, "ID_WEB_ERROR_Time3", KindInt32),
	field(99, "ID_WEB_ERROR_Time4", KindInt32),
	field(100, "ID_WEB_ERROR_Nr0", KindInt32).as("C0100_ERROR_REASON"),
	field(101, "ID_WEB_ERROR_Nr1", KindInt32),
	field(102, "ID_WEB_ERROR_Nr2", KindInt32),
	field(103, "ID_WEB_ERROR_Nr3", KindInt32),
	field(104, "ID_WEB_ERROR_Nr4", KindInt32),
	field(105, "ID_WEB_AnzahlFehlerInSpeicher", KindInt32).as("C0105_ERROR_COUNT"),
	field(106, "ID_WEB_Switchoff_file_Nr0", KindEnum).as("C0106_SWITCHOFF_REASON").enum(SwitchoffReasons),
	field(107, "ID_WEB_Switchoff_file_Nr1", KindEnum).enum(SwitchoffReasons),
	field(108, "ID_WEB_Switchoff_file_Nr2", KindEnum).enum(SwitchoffReasons),
	field(109, "ID_WEB_Switchoff_file_Nr3", KindEnum).enum(SwitchoffReasons),
	field(110, "ID_WEB_Switchoff_file_Nr4", KindEnum).enum(SwitchoffReasons),
	field(111, "ID_WEB_Switchoff_file_Time0", KindInt32).as("C0111_SWITCHOFF_TIME"),
	field(112, "ID_WEB_Switchoff_file_Time1", KindInt32),
	field(113, "ID_WEB_Switchoff_file_Time2", KindInt32),
	field(114, "ID_WEB_Switchoff_file_Time3", KindInt32),
	field(115, "ID_WEB_Switchoff_file_Time4", KindInt32),

	flag(116, "ID_WEB_Comfort_exists"),
	field(117, "ID_WEB_HauptMenuStatus_Zeile1", KindEnum).as("C0117_STATUS_LINE_1").enum(StatusLine1Options),
	field(118, "ID_WEB_HauptMenuStatus_Zeile2", KindEnum).as("C0118_STATUS_LINE_2").enum(StatusLine2Options),
	field(119, "ID_WEB_HauptMenuStatus_Zeile3", KindEnum).as("C0119_STATUS_LINE_3").enum(StatusLine3Options),
	seconds(120, "ID_WEB_HauptMenuStatus_Zeit").as("C0120_STATUS_TIME"),

	field(151, "ID_WEB_WMZ_Heizung", KindInt32).as("C0151_HEAT_AMOUNT_HEATING").unit("kWh", 0.1),
	field(152, "ID_WEB_WMZ_Brauchwasser", KindInt32).as("C0152_DHW_HEAT_AMOUNT").unit("kWh", 0.1),
	field(153, "ID_WEB_WMZ_Schwimmbad", KindInt32).as("C0153_POOL_HEAT_AMOUNT").unit("kWh", 0.1),
	field(154, "ID_WEB_WMZ_Seit", KindInt32).as("C0154_HEAT_AMOUNT_COUNTER").unit("kWh", 0.1),
	field(155, "ID_WEB_WMZ_Durchfluss", KindInt32).as("C0155_PUMP_FLOW_DELTA").unit("l/h", 0),
	field(156, "ID_WEB_AnalogOut1", KindInt32).as("C0156_ANALOG_OUT1").unit("V", 0.1),
	field(157, "ID_WEB_AnalogOut2", KindInt32).as("C0157_ANALOG_OUT2").unit("V", 0.1),
	seconds(158, "ID_WEB_Time_Heissgas").as("C0158_TIMER_HOT_GAS"),
	celsius(159, "ID_WEB_Temp_Lueftung_Zuluft").as("C0159_VENTILATION_SUPPLY_TEMPERATURE"),
	celsius(160, "ID_WEB_Temp_Lueftung_Abluft").as("C0160_VENTILATION_EXHAUST_TEMPERATURE"),

	flag(182, "ID_WEB_LIN_VDH_out").as("C0182_COMPRESSOR_HEATER"),
	field(231, "ID_WEB_Freq_VD", KindInt32).as("C0231_COMPRESSOR_FREQUENCY").unit("Hz", 0),
	field(257, "Heat_Output", KindInt32).as("C0257_CURRENT_HEAT_OUTPUT").unit("W", 0),
}
