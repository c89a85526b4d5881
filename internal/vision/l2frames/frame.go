package l2frames

// Frame is the canonical, immutable snapshot of one camera's detections.
// Timestamps are local monotonic nanoseconds.
type Frame struct {
	id          uint64
	cameraID    int
	frameNumber uint32
	captureTime int64
	sentTime    int64
	balls       []BallDetection
	robots      []RobotDetection
}

// NewFrame builds a Frame, copying the detection slices.
func NewFrame(id uint64, cameraID int, frameNumber uint32, captureTime, sentTime int64,
	balls []BallDetection, robots []RobotDetection) Frame {
	return Frame{
		id:          id,
		cameraID:    cameraID,
		frameNumber: frameNumber,
		captureTime: captureTime,
		sentTime:    sentTime,
		balls:       append([]BallDetection(nil), balls...),
		robots:      append([]RobotDetection(nil), robots...),
	}
}

// ID is a locally assigned, strictly increasing frame id.
func (f Frame) ID() uint64 { return f.id }

// CameraID returns the source camera.
func (f Frame) CameraID() int { return f.cameraID }

// FrameNumber returns the sensor's frame counter.
func (f Frame) FrameNumber() uint32 { return f.frameNumber }

// CaptureTime returns the local capture timestamp.
func (f Frame) CaptureTime() int64 { return f.captureTime }

// SentTime returns the local send timestamp.
func (f Frame) SentTime() int64 { return f.sentTime }

// Balls returns a copy of the ball detections.
func (f Frame) Balls() []BallDetection {
	return append([]BallDetection(nil), f.balls...)
}

// Robots returns a copy of the robot detections.
func (f Frame) Robots() []RobotDetection {
	return append([]RobotDetection(nil), f.robots...)
}

// NumBalls returns the number of ball detections without copying.
func (f Frame) NumBalls() int { return len(f.balls) }

// BestBall returns the highest-confidence ball detection.
func (f Frame) BestBall() (BallDetection, bool) {
	if len(f.balls) == 0 {
		return BallDetection{}, false
	}
	best := f.balls[0]
	for _, b := range f.balls[1:] {
		if b.Confidence > best.Confidence {
			best = b
		}
	}
	return best, true
}
