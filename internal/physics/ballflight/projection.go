package ballflight

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// ProjectToGround intersects the ray from camera through ball with the
// ground plane. It fails when the ball is not below the camera.
func ProjectToGround(ball, camera r3.Vec) (r2.Vec, bool) {
	if ball.Z >= camera.Z {
		return r2.Vec{}, false
	}
	f := camera.Z / (camera.Z - ball.Z)
	p := r3.Add(camera, r3.Scale(f, r3.Sub(ball, camera)))
	return r2.Vec{X: p.X, Y: p.Y}, true
}

// LiftFromGround returns the point at height on the ray from camera to a
// ground observation.
func LiftFromGround(ground r2.Vec, camera r3.Vec, height float64) (r3.Vec, bool) {
	if camera.Z <= 0 || height >= camera.Z {
		return r3.Vec{}, false
	}
	g := r3.Vec{X: ground.X, Y: ground.Y}
	f := (camera.Z - height) / camera.Z
	return r3.Add(camera, r3.Scale(f, r3.Sub(g, camera))), true
}
