package l2frames

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Team identifies a robot's team colour.
type Team uint8

const (
	TeamYellow Team = iota
	TeamBlue
)

func (t Team) String() string {
	switch t {
	case TeamYellow:
		return "yellow"
	case TeamBlue:
		return "blue"
	default:
		return "unknown"
	}
}

// RawBall is one decoded ball record in field millimetres.
type RawBall struct {
	Confidence float64
	X, Y, Z    float64
	PixelX     float64
	PixelY     float64
}

// RawRobot is one decoded robot record in field millimetres.
type RawRobot struct {
	Team        Team
	ID          int
	Confidence  float64
	X, Y        float64
	Orientation float64
	Height      float64
	PixelX      float64
	PixelY      float64
}

// RawFrame is a decoded per-camera sensor record. Times are in the
// sensor's clock, in seconds. SentSeconds may be zero when the sensor
// does not report a send time.
type RawFrame struct {
	CameraID       int
	FrameNumber    uint32
	CaptureSeconds float64
	SentSeconds    float64
	Balls          []RawBall
	Robots         []RawRobot
}

// BallDetection is a ball observed by one camera.
type BallDetection struct {
	Confidence float64
	Pos        r3.Vec // Z is zero unless the sensor measured height
	Pixel      r2.Vec
	CameraID   int
	Timestamp  int64
}

// RobotDetection is a robot observed by one camera.
type RobotDetection struct {
	Team        Team
	ID          int
	Confidence  float64
	Pos         r2.Vec
	Orientation float64
	Height      float64
	Pixel       r2.Vec
	CameraID    int
	Timestamp   int64
}

// RobotKey identifies a robot across frames.
type RobotKey struct {
	Team Team
	ID   int
}

// Key returns the robot's identity.
func (r RobotDetection) Key() RobotKey {
	return RobotKey{Team: r.Team, ID: r.ID}
}
