package bundle

import "github.com/peregrine-imaging/bundleadjust/internal/ephemeris"

// Image is one member of an observation: a serial number and file name for
// reporting plus the trajectory and rotation objects of the camera that took
// it. The ephemeris objects are shared with every other image in the same
// observation and with the wider project; an Image never owns them.
type Image struct {
	serialNumber string
	fileName     string
	trajectory   *ephemeris.Trajectory
	rotation     *ephemeris.Rotation
}

// NewImage builds an Image. Either ephemeris object may be nil when the image
// has no camera; the observation rejects solve options that need the missing
// object.
func NewImage(serialNumber, fileName string, trajectory *ephemeris.Trajectory, rotation *ephemeris.Rotation) *Image {
	return &Image{
		serialNumber: serialNumber,
		fileName:     fileName,
		trajectory:   trajectory,
		rotation:     rotation,
	}
}

// SerialNumber reports the image serial number.
func (im *Image) SerialNumber() string { return im.serialNumber }

// FileName reports the image file name.
func (im *Image) FileName() string { return im.fileName }

// Trajectory reports the shared trajectory object, which may be nil.
func (im *Image) Trajectory() *ephemeris.Trajectory { return im.trajectory }

// Rotation reports the shared rotation object, which may be nil.
func (im *Image) Rotation() *ephemeris.Rotation { return im.rotation }
