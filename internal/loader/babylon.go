package loader

import (
	"fmt"

	"github.com/segmentio/encoding/json"

	"github.com/Faultbox/meshlens/internal/scene"
	"github.com/Faultbox/meshlens/pkg/math"
)

type babylonFile struct {
	Meshes         []babylonNode `json:"meshes"`
	TransformNodes []babylonNode `json:"transformNodes"`
}

type babylonNode struct {
	Name               string    `json:"name"`
	ID                 string    `json:"id"`
	ParentID           string    `json:"parentId"`
	Position           []float32 `json:"position"`
	Rotation           []float32 `json:"rotation"`
	RotationQuaternion []float32 `json:"rotationQuaternion"`
	Scaling            []float32 `json:"scaling"`
	Positions          []float32 `json:"positions"`
	Indices            []uint32  `json:"indices"`
}

func (n *babylonNode) local() math.Mat4 {
	t := vec3Or(n.Position, math.Vec3{})
	s := vec3Or(n.Scaling, math.Splat(1))

	r := math.QuatIdentity()
	switch {
	case len(n.RotationQuaternion) == 4:
		q := n.RotationQuaternion
		r = math.Quat{X: q[0], Y: q[1], Z: q[2], W: q[3]}.Normalize()
	case len(n.Rotation) == 3:
		// Babylon stores Euler angles as (pitch, yaw, roll).
		r = math.QuatFromYawPitchRoll(n.Rotation[1], n.Rotation[0], n.Rotation[2])
	}
	return math.TRS(t, r, s)
}

func vec3Or(v []float32, def math.Vec3) math.Vec3 {
	if len(v) != 3 {
		return def
	}
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}
}

func decodeBabylon(data []byte) ([]*scene.Mesh, error) {
	var file babylonFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	byID := make(map[string]*babylonNode, len(file.Meshes)+len(file.TransformNodes))
	for i := range file.TransformNodes {
		n := &file.TransformNodes[i]
		byID[n.ID] = n
	}
	for i := range file.Meshes {
		n := &file.Meshes[i]
		byID[n.ID] = n
	}

	worlds := make(map[*babylonNode]math.Mat4)
	var world func(n *babylonNode, depth int) (math.Mat4, error)
	world = func(n *babylonNode, depth int) (math.Mat4, error) {
		if m, ok := worlds[n]; ok {
			return m, nil
		}
		if depth > len(byID) {
			return math.Mat4{}, fmt.Errorf("parent cycle at %q", n.ID)
		}
		m := n.local()
		if n.ParentID != "" {
			parent, ok := byID[n.ParentID]
			if !ok {
				return math.Mat4{}, fmt.Errorf("mesh %q: unknown parent %q", n.Name, n.ParentID)
			}
			pm, err := world(parent, depth+1)
			if err != nil {
				return math.Mat4{}, err
			}
			m = pm.Mul(m)
		}
		worlds[n] = m
		return m, nil
	}

	meshes := make([]*scene.Mesh, 0, len(file.Meshes))
	for i := range file.Meshes {
		n := &file.Meshes[i]
		if len(n.Positions)%3 != 0 {
			return nil, fmt.Errorf("mesh %q: %d position values is not a multiple of 3", n.Name, len(n.Positions))
		}
		w, err := world(n, 0)
		if err != nil {
			return nil, err
		}

		count := len(n.Positions) / 3
		vertices := make([]math.Vec3, count)
		for v := 0; v < count; v++ {
			p := math.Vec3{X: n.Positions[v*3], Y: n.Positions[v*3+1], Z: n.Positions[v*3+2]}
			vertices[v] = w.TransformVec3(p)
		}
		for _, idx := range n.Indices {
			if int(idx) >= count {
				return nil, fmt.Errorf("mesh %q: index %d out of range", n.Name, idx)
			}
		}

		name := n.Name
		if name == "" {
			name = n.ID
		}
		meshes = append(meshes, scene.NewMesh(name, w.TransformVec3(math.Vec3{}), vertices, n.Indices))
	}
	return meshes, nil
}
