// Package loader decodes uploaded scene files into world-space meshes.
//
// Supported formats are glTF 2.0 (JSON with embedded buffers, or binary
// GLB), Babylon .babylon JSON and Wavefront OBJ. Node hierarchies are
// flattened: every returned mesh has its vertices already transformed to
// world space and its position set to the world-space origin of its node.
package loader

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshlens/internal/scene"
)

// Format is a decodable scene file format.
type Format int

const (
	FormatUnknown Format = iota
	FormatGLB
	FormatGLTF
	FormatBabylon
	FormatOBJ
)

func (f Format) String() string {
	switch f {
	case FormatGLB:
		return "glb"
	case FormatGLTF:
		return "gltf"
	case FormatBabylon:
		return "babylon"
	case FormatOBJ:
		return "obj"
	default:
		return "unknown"
	}
}

// ErrUnsupportedFormat is wrapped by DecodeError when no decoder matches.
var ErrUnsupportedFormat = errors.New("unsupported scene format")

// DecodeError reports a scene file that could not be decoded.
type DecodeError struct {
	Name   string
	Format Format
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s (%s): %v", e.Name, e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode parses data as a scene file. The format is sniffed from the
// content first and from the file name extension second. A scene without
// meshes decodes to an empty slice.
func Decode(name string, data []byte) ([]*scene.Mesh, error) {
	format := Detect(name, data)

	var (
		meshes []*scene.Mesh
		err    error
	)
	switch format {
	case FormatGLB, FormatGLTF:
		meshes, err = decodeGLTF(data)
	case FormatBabylon:
		meshes, err = decodeBabylon(data)
	case FormatOBJ:
		meshes, err = decodeOBJ(data)
	default:
		err = ErrUnsupportedFormat
	}
	if err != nil {
		return nil, &DecodeError{Name: name, Format: format, Err: err}
	}
	return meshes, nil
}
