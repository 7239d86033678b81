package event

import "github.com/chook-lab/chook/internal/schema"

// Types maps each event-type name transmitted by the source to the subject
// kind it carries.
var Types = map[string]string{
	"ComputerAdded":                          schema.KindComputer,
	"ComputerCheckIn":                        schema.KindComputer,
	"ComputerInventoryCompleted":             schema.KindComputer,
	"ComputerPolicyFinished":                 schema.KindComputer,
	"ComputerPushCapabilityChanged":          schema.KindComputer,
	"DeviceAddedToDEP":                       schema.KindDEPDevice,
	"JSSShutdown":                            schema.KindJSS,
	"JSSStartup":                             schema.KindJSS,
	"MobileDeviceCheckIn":                    schema.KindMobileDevice,
	"MobileDeviceCommandCompleted":           schema.KindMobileDevice,
	"MobileDeviceEnrolled":                   schema.KindMobileDevice,
	"MobileDevicePushSent":                   schema.KindMobileDevice,
	"MobileDeviceUnEnrolled":                 schema.KindMobileDevice,
	"PatchSoftwareTitleUpdated":              schema.KindPatchUpdate,
	"PolicyFinished":                         schema.KindPolicy,
	"PushSent":                               schema.KindPush,
	"RestAPIOperation":                       schema.KindRestAPI,
	"SCEPChallenge":                          schema.KindSCEPChallenge,
	"SmartGroupComputerMembershipChange":     schema.KindSmartGroup,
	"SmartGroupMobileDeviceMembershipChange": schema.KindSmartGroup,
}
