package loader

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Faultbox/meshlens/internal/scene"
	"github.com/Faultbox/meshlens/pkg/math"
	"github.com/Faultbox/meshlens/pkg/volume"
)

// objObject collects the faces of one o/g group. Indices point into the
// file-wide vertex list until the group is compacted.
type objObject struct {
	name  string
	faces []uint32
}

type objDecoder struct {
	line     int
	vertices []math.Vec3
	objects  []*objObject
	current  *objObject
}

func decodeOBJ(data []byte) ([]*scene.Mesh, error) {
	dec := &objDecoder{}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		dec.line++
		if err := dec.parseLine(sc.Text()); err != nil {
			return nil, fmt.Errorf("line %d: %w", dec.line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return dec.meshes(), nil
}

func (dec *objDecoder) parseLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}

	switch fields[0] {
	case "o", "g":
		name := strings.Join(fields[1:], " ")
		if name == "" {
			name = fmt.Sprintf("object%d", len(dec.objects))
		}
		dec.current = &objObject{name: name}
		dec.objects = append(dec.objects, dec.current)
	case "v":
		return dec.parseVertex(fields[1:])
	case "f":
		return dec.parseFace(fields[1:])
	}
	// Normals, texture coordinates and materials do not affect geometry.
	return nil
}

func (dec *objDecoder) parseVertex(fields []string) error {
	if len(fields) < 3 {
		return errors.New("vertex with fewer than 3 coordinates")
	}
	var c [3]float32
	for i := range c {
		val, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return err
		}
		c[i] = float32(val)
	}
	dec.vertices = append(dec.vertices, math.FromArray(c))
	return nil
}

// parseFace reads f v1[/vt1][/vn1] v2... and fan-triangulates polygons.
func (dec *objDecoder) parseFace(fields []string) error {
	if len(fields) < 3 {
		return errors.New("face with fewer than 3 vertices")
	}
	if dec.current == nil {
		dec.current = &objObject{name: "default"}
		dec.objects = append(dec.objects, dec.current)
	}

	idx := make([]uint32, len(fields))
	for i, f := range fields {
		v, err := dec.vertexIndex(f)
		if err != nil {
			return err
		}
		idx[i] = v
	}
	for j := 1; j+1 < len(idx); j++ {
		dec.current.faces = append(dec.current.faces, idx[0], idx[j], idx[j+1])
	}
	return nil
}

func (dec *objDecoder) vertexIndex(field string) (uint32, error) {
	ref, _, _ := strings.Cut(field, "/")
	i, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("face vertex %q: %w", field, err)
	}
	switch {
	case i > 0:
		i--
	case i < 0:
		i += len(dec.vertices)
	default:
		return 0, errors.New("face vertex index 0")
	}
	if i < 0 || i >= len(dec.vertices) {
		return 0, fmt.Errorf("face vertex %q out of range", field)
	}
	return uint32(i), nil
}

// meshes compacts each group to the vertices it references. Groups without
// faces are dropped.
func (dec *objDecoder) meshes() []*scene.Mesh {
	out := make([]*scene.Mesh, 0, len(dec.objects))
	for _, obj := range dec.objects {
		if len(obj.faces) == 0 {
			continue
		}
		remap := make(map[uint32]uint32)
		var vertices []math.Vec3
		indices := make([]uint32, len(obj.faces))
		for i, src := range obj.faces {
			dst, ok := remap[src]
			if !ok {
				dst = uint32(len(vertices))
				remap[src] = dst
				vertices = append(vertices, dec.vertices[src])
			}
			indices[i] = dst
		}
		// OBJ has no node transforms; a group is positioned at its bounds center.
		box := volume.New(vertices[0], vertices[0])
		for _, v := range vertices[1:] {
			box = box.ExtendPoint(v)
		}
		out = append(out, scene.NewMesh(obj.name, box.Center(), vertices, indices))
	}
	return out
}
