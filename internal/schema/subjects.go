package schema

// Definition is one row of the static subject table.
type Definition struct {
	Kind   string
	Fields []FieldSpec
}

var pushCommands = []string{
	"Settings", "DeviceLock", "EraseDevice", "ClearPasscode", "UnmanageDevice",
	"UpdateInventory", "ClearRestrictionsPassword", "SettingsEnableDataRoaming",
	"SettingsDisableDataRoaming", "SettingsEnableVoiceRoaming", "SettingsDisableVoiceRoaming",
	"SettingsEnableAppAnalytics", "SettingsDisableAppAnalytics", "SettingsEnableDiagnosticSubmission",
	"SettingsDisableDiagnosticSubmission", "BlankPush", "Wallpaper", "DeviceName",
	"ShutDownDevice", "RestartDevice", "PasscodeLockGracePeriod",
}

func computerFields() []FieldSpec {
	return []FieldSpec{
		{Name: "udid", Validate: String, Generator: "computer_udid"},
		{Name: "deviceName", Validate: String, Generator: "word"},
		{Name: "model", Validate: String, Generator: "computer_model"},
		{Name: "macAddress", Validate: String, Generator: "mac_address"},
		{Name: "alternateMacAddress", Validate: Optional(String), Generator: "mac_address"},
		{Name: "serialNumber", Validate: String, Generator: "computer_serial_number"},
		{Name: "osVersion", Validate: String, Generator: "computer_os_version"},
		{Name: "osBuild", Validate: String, Generator: "os_build"},
		{Name: "userDirectoryID", Validate: String, Generator: "int"},
		{Name: "username", Validate: String, Generator: "random_word"},
		{Name: "realName", Validate: String, Generator: "random_name"},
		{Name: "emailAddress", Validate: String, Generator: "email_address"},
		{Name: "phone", Validate: String, Generator: "phone"},
		{Name: "position", Validate: String, Generator: "word"},
		{Name: "department", Validate: String, Generator: "word"},
		{Name: "building", Validate: String, Generator: "word"},
		{Name: "room", Validate: String, Generator: "room"},
		{Name: "jssID", Validate: Integer, Generator: "int"},
	}
}

// Subjects returns the subject table of the source protocol.
func Subjects() []Definition {
	return []Definition{
		{Kind: KindComputer, Fields: computerFields()},
		{Kind: KindDEPDevice, Fields: []FieldSpec{
			{Name: "assetTag", Validate: String, Generator: "word"},
			{Name: "description", Validate: String, Generator: "word"},
			{Name: "deviceAssignedDate", Validate: Time, Generator: "time", ConvertOnDecode: JSSEpochToTime},
			{Name: "deviceEnrollmentProgramInstanceId", Validate: Integer, Generator: "int"},
			{Name: "model", Validate: String, Generator: "computer_model"},
			{Name: "serialNumber", Validate: String, Generator: "computer_serial_number"},
		}},
		{Kind: KindJSS, Fields: []FieldSpec{
			{Name: "institution", Validate: String, Generator: "word"},
			{Name: "hostAddress", Validate: String, Generator: "host"},
			{Name: "webApplicationPath", Validate: String, Generator: "path"},
			{Name: "isClusterMaster", Validate: Boolean, Generator: "bool"},
			{Name: "jssUrl", Validate: URL, Generator: "url"},
		}},
		{Kind: KindMobileDevice, Fields: []FieldSpec{
			{Name: "udid", Validate: String, Generator: "mobile_udid"},
			{Name: "deviceName", Validate: String, Generator: "word"},
			{Name: "version", Validate: String, Generator: "version"},
			{Name: "model", Validate: String, Generator: "mobile_model"},
			{Name: "bluetoothMacAddress", Validate: String, Generator: "mac_address"},
			{Name: "wifiMacAddress", Validate: String, Generator: "mac_address"},
			{Name: "imei", Validate: IMEI, Generator: "imei"},
			{Name: "icciID", Validate: String, Generator: "iccid"},
			{Name: "product", Validate: Nil, Generator: "product"},
			{Name: "serialNumber", Validate: SerialNumber, Generator: "mobile_serial_number"},
			{Name: "userDirectoryID", Validate: String, Generator: "mobile_userid"},
			{Name: "room", Validate: String, Generator: "room"},
			{Name: "osVersion", Validate: String, Generator: "mobile_os_version"},
			{Name: "osBuild", Validate: String, Generator: "os_build"},
			{Name: "modelDisplay", Validate: String, Generator: "mobile_model"},
			{Name: "username", Validate: String, Generator: "random_word"},
			{Name: "jssID", Validate: Integer, Generator: "int"},
		}},
		{Kind: KindPatchUpdate, Fields: []FieldSpec{
			{Name: "name", Validate: String, Generator: "patch"},
			{Name: "latestVersion", Validate: String, Generator: "version"},
			{Name: "lastUpdate", Validate: Time, Generator: "time", ConvertOnDecode: JSSEpochToTime},
			{Name: "reportUrl", Validate: URL, Generator: "url"},
			{Name: "jssID", Validate: Integer, Generator: "int"},
		}},
		{Kind: KindPolicy, Fields: []FieldSpec{
			{Name: "policyId", Validate: Integer, Generator: "int"},
			{Name: "name", Validate: String, Generator: "word"},
			{Name: "successful", Validate: Boolean, Generator: "bool"},
			{Name: "computer", Validate: Any, Generator: "computer"},
		}},
		{Kind: KindPush, Fields: []FieldSpec{
			{Name: "type", Validate: OneOf("push_command", pushCommands...), Generator: "push"},
		}},
		{Kind: KindRestAPI, Fields: []FieldSpec{
			{Name: "operationSuccessful", Validate: Boolean, Generator: "bool"},
			{Name: "objectID", Validate: Integer, Generator: "int"},
			{Name: "objectName", Validate: String, Generator: "word"},
			{Name: "objectTypeName", Validate: String, Generator: "word"},
			{Name: "authorizedUsername", Validate: String, Generator: "word"},
			{Name: "restAPIOperationType", Validate: OneOf("rest_operation", "GET", "POST", "PUT", "DELETE"), Generator: "rest_operation"},
		}},
		{Kind: KindSCEPChallenge, Fields: []FieldSpec{
			{Name: "url", Validate: URL, Generator: "url"},
			{Name: "entityType", Validate: String, Generator: "word"},
			{Name: "managementId", Validate: String, Generator: "uuid"},
			{Name: "updateEvent", Validate: String, Generator: "word"},
			{Name: "targetDevice", Validate: Any, Generator: "device"},
		}},
		{Kind: KindSmartGroup, Fields: []FieldSpec{
			{Name: "jssid", Validate: Integer, Generator: "int"},
			{Name: "name", Validate: String, Generator: "word"},
			{Name: "smartGroup", Validate: Boolean, Generator: "bool"},
			{Name: "computer", Validate: Boolean, Generator: "bool"},
			{Name: "groupAddedDevicesIds", Validate: Any, Generator: "int_list"},
			{Name: "groupRemovedDevicesIds", Validate: Any, Generator: "int_list"},
		}},
	}
}
