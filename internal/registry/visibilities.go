// internal/registry/visibilities.go
package registry

var visibilityTable = []Descriptor{
	flag(0, "ID_Visi_NieAnzeigen"),
	flag(1, "ID_Visi_ImmerAnzeigen"),
	flag(2, "ID_Visi_Heizung").as("V0002_HEATING"),
	flag(3, "ID_Visi_Brauwasser").as("V0003_DHW"),
	flag(4, "ID_Visi_Schwimmbad").as("V0004_SWIMMING_POOL"),
	flag(5, "ID_Visi_Kuhlung").as("V0005_COOLING"),
	flag(6, "ID_Visi_Lueftung").as("V0006_VENTILATION"),
	flag(7, "ID_Visi_MK1").as("V0007_MK1"),
	flag(8, "ID_Visi_MK2").as("V0008_MK2"),
	flag(9, "ID_Visi_ThermDesinfekt").as("V0009_THERMAL_DESINFECTION"),
	flag(10, "ID_Visi_Zirkulation").as("V0010_CIRCULATION"),
	flag(11, "ID_Visi_KuhlTemp_SolltempMK1").as("V0011_COOLING_TARGET_MK1"),
	flag(12, "ID_Visi_KuhlTemp_SolltempMK2").as("V0012_COOLING_TARGET_MK2"),
	flag(13, "ID_Visi_KuhlTemp_ATDiffMK1"),
	flag(14, "ID_Visi_KuhlTemp_ATDiffMK2"),
	flag(15, "ID_Visi_Service_Information"),
	flag(16, "ID_Visi_Service_Einstellung"),
	flag(17, "ID_Visi_Service_Sprache"),
	flag(18, "ID_Visi_Service_DatumUhrzeit"),
	flag(19, "ID_Visi_Service_Ausheiz"),
	flag(20, "ID_Visi_Service_Anlagenkonfiguration"),
	flag(21, "ID_Visi_Service_IBNAssistant"),
	flag(22, "ID_Visi_Service_ParameterIBNZurueck"),
	flag(23, "ID_Visi_Temp_Vorlauf").as("V0023_FLOW_IN_TEMPERATURE"),
	flag(24, "ID_Visi_Temp_Ruecklauf").as("V0024_FLOW_OUT_TEMPERATURE"),
	flag(25, "ID_Visi_Temp_RL_Soll"),
	flag(26, "ID_Visi_Temp_Ruecklext").as("V0026_FLOW_OUT_TEMPERATURE_EXTERNAL"),
	flag(27, "ID_Visi_Temp_Heissgas").as("V0027_HOT_GAS_TEMPERATURE"),
	flag(28, "ID_Visi_Temp_Aussent").as("V0028_OUTDOOR_TEMPERATURE"),
	flag(29, "ID_Visi_Temp_BW_Ist").as("V0029_DHW_TEMPERATURE"),
	flag(30, "ID_Visi_Temp_BW_Soll"),
	flag(31, "ID_Visi_Temp_WQ_Ein").as("V0031_HEAT_SOURCE_INPUT_TEMPERATURE"),
	flag(32, "ID_Visi_Temp_Kaeltekreis"),
	flag(33, "ID_Visi_Temp_MK1_Vorlauf"),
	flag(34, "ID_Visi_Temp_MK1VL_Soll"),
	flag(35, "ID_Visi_Temp_Raumstation").as("V0035_ROOM_TEMPERATURE"),
}
