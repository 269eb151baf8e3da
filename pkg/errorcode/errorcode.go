// Package errorcode describes the error codes of the Flockwave protocol.
//
// UAVs report their state as a list of error codes (see the errorCodeList
// definition of the schema bundle). Codes are grouped by severity: values
// below 64 are informational, below 128 warnings, below 192 errors and the
// rest critical errors.
package errorcode

import (
	"fmt"
	"sort"
)

// Code is a Flockwave error code.
type Code uint8

const (
	NoError Code = 0

	// Informational messages
	OnGround                   Code = 1
	LoggingDeactivated         Code = 2
	PrearmCheckInProgress      Code = 3
	AutopilotInitializing      Code = 4
	Takeoff                    Code = 5
	Landing                    Code = 6
	Landed                     Code = 7
	MotorsRunningWhileOnGround Code = 8
	Sleeping                   Code = 9
	FlightControlSuspended     Code = 10
	FlightControlSlowMode      Code = 11
	ReturnToHome               Code = 63

	// Warnings
	LowDiskSpace                Code = 64
	RCSignalLostWarning         Code = 65
	BatteryLowWarning           Code = 66
	TimesyncError               Code = 67
	FarFromTakeoffPosition      Code = 68
	InvalidMissionConfiguration Code = 69
	RadioMissing                Code = 70
	GeofenceViolationWarning    Code = 71
	WindSpeedWarning            Code = 72
	Disarmed                    Code = 73
	RebootRequired              Code = 74
	DriftFromDesiredPosition    Code = 75
	UnspecifiedWarning          Code = 127

	// Errors
	AutopilotCommTimeout   Code = 128
	AutopilotAckTimeout    Code = 129
	AutopilotProtocolError Code = 130
	PrearmCheckFailure     Code = 131
	RCSignalLostError      Code = 132
	GPSSignalLost          Code = 133
	BatteryLowError        Code = 134
	TargetNotFound         Code = 135
	TargetTooFar           Code = 136
	ConfigurationError     Code = 137
	RCNotCalibrated        Code = 138
	WindSpeedError         Code = 139
	PayloadError           Code = 140
	ProximityError         Code = 141
	SimulatedError         Code = 188
	ControlAlgorithmError  Code = 189
	SensorFailure          Code = 190
	UnspecifiedError       Code = 191

	// Critical errors
	HWSWIncompatible           Code = 192
	MagneticError              Code = 193
	GyroscopeError             Code = 194
	AccelerometerError         Code = 195
	PressureSensorError        Code = 196
	GPSSignalLostCritical      Code = 197
	MotorMalfunction           Code = 198
	BatteryCritical            Code = 199
	NoGPSHomePosition          Code = 200
	GeofenceViolation          Code = 201
	InternalClockError         Code = 202
	ExternalClockError         Code = 203
	RequiredHWComponentMissing Code = 204
	AutopilotInitFailed        Code = 205
	AutopilotCommFailed        Code = 206
	Crash                      Code = 207
	SimulatedCriticalError     Code = 253
	CriticalSensorFailure      Code = 254
	UnspecifiedCriticalError   Code = 255
)

type codeInfo struct {
	abbreviation string
	description  string
}

var codeTable = map[Code]codeInfo{
	NoError:                     {"ok", "No error"},
	OnGround:                    {"ground", "Drone is on the ground with motors off"},
	LoggingDeactivated:          {"no log", "Logging deactivated"},
	PrearmCheckInProgress:       {"prearm", "Prearm check in progress"},
	AutopilotInitializing:       {"init", "Autopilot initializing"},
	Takeoff:                     {"takeoff", "Drone is taking off"},
	Landing:                     {"landing", "Drone is landing"},
	Landed:                      {"landed", "Drone has landed successfully"},
	MotorsRunningWhileOnGround:  {"motors", "Motors are running while on ground"},
	Sleeping:                    {"sleep", "Drone is in sleep mode"},
	FlightControlSuspended:      {"paused", "Flight control is suspended"},
	FlightControlSlowMode:       {"slow", "Flight control is in slow mode"},
	ReturnToHome:                {"RTH", "Drone is returning home"},
	LowDiskSpace:                {"storage", "Low disk space"},
	RCSignalLostWarning:         {"RC lost", "RC lost"},
	BatteryLowWarning:           {"lowbat", "Battery low"},
	TimesyncError:               {"timesync", "Timesync error"},
	FarFromTakeoffPosition:      {"tkoffpos", "Drone is not at its designated takeoff position"},
	InvalidMissionConfiguration: {"mission", "Mission configuration error or mission out of geofence"},
	RadioMissing:                {"no radio", "Radio channel offline"},
	GeofenceViolationWarning:    {"fence", "Drone is outside geofence on ground"},
	WindSpeedWarning:            {"wind", "Wind speed is high"},
	Disarmed:                    {"disarm", "Drone not armed yet"},
	RebootRequired:              {"reboot", "Drone requires a reboot"},
	DriftFromDesiredPosition:    {"drift", "Unexpected drift from desired position"},
	UnspecifiedWarning:          {"warning", "Unspecified warning"},
	AutopilotCommTimeout:        {"comm t/o", "Autopilot communication timeout"},
	AutopilotAckTimeout:         {"ack t/o", "Autopilot acknowledgment timeout"},
	AutopilotProtocolError:      {"proto", "Autopilot communication protocol error"},
	PrearmCheckFailure:          {"prearm", "Prearm check failure"},
	RCSignalLostError:           {"RC lost", "RC signal lost"},
	GPSSignalLost:               {"no GPS", "GPS signal lost or GPS error"},
	BatteryLowError:             {"lowbat", "Battery low"},
	TargetNotFound:              {"target", "Target not found"},
	TargetTooFar:                {"too far", "Target is too far"},
	ConfigurationError:          {"config", "Configuration error"},
	RCNotCalibrated:             {"RC calib", "RC is not calibrated"},
	WindSpeedError:              {"wind", "Wind speed is too high"},
	PayloadError:                {"payload", "Payload error"},
	ProximityError:              {"proximity", "Proximity sensor error"},
	SimulatedError:              {"simerr", "Simulated error"},
	ControlAlgorithmError:       {"control", "Error in control algorithm"},
	SensorFailure:               {"sensor", "Unspecified sensor failure"},
	UnspecifiedError:            {"error", "Unspecified error"},
	HWSWIncompatible:            {"compat", "Incompatible hardware or software"},
	MagneticError:               {"mag", "Magnetometer error"},
	GyroscopeError:              {"gyro", "Gyroscope error"},
	AccelerometerError:          {"acc", "Accelerometer error"},
	PressureSensorError:         {"baro", "Pressure sensor or altimeter error"},
	GPSSignalLostCritical:       {"GPS", "GPS error or GPS signal lost"},
	MotorMalfunction:            {"motor", "Motor malfunction"},
	BatteryCritical:             {"lowbat", "Battery critical"},
	NoGPSHomePosition:           {"home", "No GPS home position"},
	GeofenceViolation:           {"fence", "Geofence violation"},
	InternalClockError:          {"clk", "Internal clock error"},
	ExternalClockError:          {"extclk", "External clock error"},
	RequiredHWComponentMissing:  {"no HW", "Required hardware component missing"},
	AutopilotInitFailed:         {"initfail", "Autopilot initialization failed"},
	AutopilotCommFailed:         {"commfail", "Autopilot communication failed"},
	Crash:                       {"crash", "Drone crashed"},
	SimulatedCriticalError:      {"simcrit", "Simulated critical error"},
	CriticalSensorFailure:       {"sensor", "Unspecified critical sensor failure"},
	UnspecifiedCriticalError:    {"fatal", "Unspecified critical error"},
}

// Abbreviation returns a short, more or less readable form of the code
// for displays with little room. Unknown codes are shown as "E<n>".
func (c Code) Abbreviation() string {
	if info, ok := codeTable[c]; ok {
		return info.abbreviation
	}
	return fmt.Sprintf("E%d", uint8(c))
}

// Description returns a human-readable description of the code.
// Unknown codes are described as "Error <n>".
func (c Code) Description() string {
	if info, ok := codeTable[c]; ok {
		return info.description
	}
	return fmt.Sprintf("Error %d", uint8(c))
}

// String returns the abbreviation of the code.
func (c Code) String() string {
	return c.Abbreviation()
}

// IsKnown returns true if the code is defined by the protocol.
func (c Code) IsKnown() bool {
	_, ok := codeTable[c]
	return ok
}

// Severity returns the severity class of the code.
func (c Code) Severity() Severity {
	switch {
	case c < 64:
		return SeverityInfo
	case c < 128:
		return SeverityWarning
	case c < 192:
		return SeverityError
	default:
		return SeverityCritical
	}
}

// Severity classifies error codes.
type Severity int

// Severity classes, in increasing order.
const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
)

var severityNames = [...]string{"info", "warning", "error", "critical"}

// String returns the name of the severity, matching the severity
// enumeration of the schema bundle.
func (s Severity) String() string {
	if s >= 0 && int(s) < len(severityNames) {
		return severityNames[s]
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// ParseSeverity converts a severity name into a Severity.
func ParseSeverity(name string) (Severity, error) {
	for i, n := range severityNames {
		if n == name {
			return Severity(i), nil
		}
	}
	return 0, fmt.Errorf("unknown severity %q", name)
}

// Known returns every code defined by the protocol in increasing order.
func Known() []Code {
	codes := make([]Code, 0, len(codeTable))
	for c := range codeTable {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Parse converts an integer from a message into a Code.
func Parse(n int) (Code, error) {
	if n < 0 || n > 255 {
		return 0, fmt.Errorf("error code out of range: %d", n)
	}
	return Code(n), nil
}

// Worst returns the most severe of the given codes, or NoError if there
// are none.
func Worst(codes []Code) Code {
	worst := NoError
	for _, c := range codes {
		if c > worst {
			worst = c
		}
	}
	return worst
}
