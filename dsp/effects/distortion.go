package effects

import (
	"fmt"
	"math"

	"github.com/dscruggs/lyre-studio/dsp/core"
)

const (
	minDistortionDriveDB = -60.0
	maxDistortionDriveDB = 100.0
)

// Distortion applies drive gain followed by tanh saturation.
//
//	y = tanh(x * 10^(drive/20))
type Distortion struct {
	driveDB float64
	drive   float64
}

// NewDistortion creates a distortion with drive in dB.
func NewDistortion(driveDB float64) (*Distortion, error) {
	if driveDB < minDistortionDriveDB || driveDB > maxDistortionDriveDB || math.IsNaN(driveDB) {
		return nil, fmt.Errorf("distortion drive must be in [%g, %g] dB: %f",
			minDistortionDriveDB, maxDistortionDriveDB, driveDB)
	}

	return &Distortion{driveDB: driveDB, drive: core.DBToLinear(driveDB)}, nil
}

// DriveDB returns drive in dB.
func (d *Distortion) DriveDB() float64 { return d.driveDB }

// ProcessSample processes one sample.
func (d *Distortion) ProcessSample(input float64) float64 {
	return math.Tanh(input * d.drive)
}

// ProcessInPlace distorts buf in place.
func (d *Distortion) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = math.Tanh(x * d.drive)
	}
}

// Reset is a no-op; Distortion is stateless.
func (d *Distortion) Reset() {}
