package game

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/iburimskiy/gw-visualization/internal/config"
)

const (
	cameraFPS       = 60
	cameraFrequency = 6.0
	cameraDamping   = 1.0
	maxPitch        = 1.45
)

// camera orbits the origin. Input moves the targets; springs ease the
// actual angles and distance toward them every frame.
type camera struct {
	spring harmonica.Spring

	yaw, pitch, dist          float64
	yawVel, pitchVel, distVel float64
	yawTo, pitchTo, distTo    float64

	width, height int
	viewProj      mgl64.Mat4
	focal         float64
}

func newCamera(width, height int) *camera {
	start := mgl64.Vec3{config.CameraStartX, config.CameraStartY, config.CameraStartZ}
	dist := start.Len()
	pitch := math.Asin(start.Y() / dist)
	yaw := math.Atan2(start.X(), start.Z())

	c := &camera{
		spring: harmonica.NewSpring(harmonica.FPS(cameraFPS), cameraFrequency, cameraDamping),
		yaw:    yaw, pitch: pitch, dist: dist,
		yawTo: yaw, pitchTo: pitch, distTo: dist,
	}
	c.resize(width, height)
	return c
}

func (c *camera) rotate(dx, dy float64) {
	c.yawTo -= dx * config.DragSensitivity
	c.pitchTo = math.Max(-maxPitch, math.Min(maxPitch, c.pitchTo+dy*config.DragSensitivity))
}

func (c *camera) zoom(steps float64) {
	d := c.distTo * math.Pow(config.ZoomStep, -steps)
	c.distTo = math.Max(config.CameraMinDist, math.Min(config.CameraMaxDist, d))
}

func (c *camera) resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if width == c.width && height == c.height {
		return
	}
	c.width, c.height = width, height
	c.rebuild()
}

func (c *camera) update() {
	c.yaw, c.yawVel = c.spring.Update(c.yaw, c.yawVel, c.yawTo)
	c.pitch, c.pitchVel = c.spring.Update(c.pitch, c.pitchVel, c.pitchTo)
	c.dist, c.distVel = c.spring.Update(c.dist, c.distVel, c.distTo)
	c.rebuild()
}

func (c *camera) eye() mgl64.Vec3 {
	sp, cp := math.Sincos(c.pitch)
	sy, cy := math.Sincos(c.yaw)
	return mgl64.Vec3{c.dist * cp * sy, c.dist * sp, c.dist * cp * cy}
}

func (c *camera) rebuild() {
	fov := mgl64.DegToRad(config.CameraFovDeg)
	aspect := float64(c.width) / float64(c.height)
	proj := mgl64.Perspective(fov, aspect, config.CameraNear, config.CameraFar)
	view := mgl64.LookAtV(c.eye(), mgl64.Vec3{}, mgl64.Vec3{0, 1, 0})
	c.viewProj = proj.Mul4(view)
	c.focal = float64(c.height) / 2 / math.Tan(fov/2)
}

// project maps a world point to screen pixels. depth is the distance along
// the view axis; ok is false for points behind the near plane.
func (c *camera) project(p mgl64.Vec3) (x, y, depth float64, ok bool) {
	clip := c.viewProj.Mul4x1(p.Vec4(1))
	w := clip.W()
	if w <= config.CameraNear {
		return 0, 0, 0, false
	}
	x = (clip.X()/w + 1) / 2 * float64(c.width)
	y = (1 - clip.Y()/w) / 2 * float64(c.height)
	return x, y, w, true
}

// pixelRadius is the on-screen radius of a sphere of world radius r at depth.
func (c *camera) pixelRadius(r, depth float64) float64 {
	return r * c.focal / depth
}
