// internal/model/rotator.go
package model

// PositionRequest sets one axis to an absolute position
type PositionRequest struct {
	Degrees *float64 `json:"degrees" binding:"required"`
}

// CalibrateRequest starts vertical calibration; Set stores the current
// position as the reference instead of homing
type CalibrateRequest struct {
	Set bool `json:"set"`
}

// MoveRequest starts or stops continuous movement
type MoveRequest struct {
	Direction string `json:"direction" binding:"required"`
}

// StepsRequest moves one axis by a number of motor steps
type StepsRequest struct {
	Steps *int32 `json:"steps" binding:"required"`
}

// CalibratedResponse reports the calibration state
type CalibratedResponse struct {
	Calibrated bool `json:"calibrated"`
}

// VersionResponse reports the firmware version
type VersionResponse struct {
	Version string `json:"version"`
}
