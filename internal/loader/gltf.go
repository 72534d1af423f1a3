package loader

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/meshlens/internal/scene"
	"github.com/Faultbox/meshlens/pkg/math"
)

func decodeGLTF(data []byte) ([]*scene.Mesh, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, err
	}

	roots, err := sceneRoots(doc)
	if err != nil {
		return nil, err
	}

	var meshes []*scene.Mesh
	visited := make(map[int]bool)
	var walk func(idx int, parent math.Mat4) error
	walk = func(idx int, parent math.Mat4) error {
		if idx < 0 || idx >= len(doc.Nodes) {
			return fmt.Errorf("node %d out of range", idx)
		}
		if visited[idx] {
			return fmt.Errorf("node %d visited twice", idx)
		}
		visited[idx] = true

		node := doc.Nodes[idx]
		world := parent.Mul(nodeMatrix(node))
		if node.Mesh != nil {
			m, err := gltfMesh(doc, idx, *node.Mesh, world)
			if err != nil {
				return err
			}
			meshes = append(meshes, m)
		}
		for _, child := range node.Children {
			if err := walk(child, world); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range roots {
		if err := walk(root, math.Identity()); err != nil {
			return nil, err
		}
	}
	return meshes, nil
}

// sceneRoots returns the root nodes of the default scene. Documents without
// scenes use every node that is not a child of another.
func sceneRoots(doc *gltf.Document) ([]int, error) {
	if len(doc.Scenes) > 0 {
		idx := 0
		if doc.Scene != nil {
			idx = *doc.Scene
		}
		if idx < 0 || idx >= len(doc.Scenes) {
			return nil, fmt.Errorf("scene %d out of range", idx)
		}
		return doc.Scenes[idx].Nodes, nil
	}

	isChild := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			isChild[c] = true
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !isChild[i] {
			roots = append(roots, i)
		}
	}
	return roots, nil
}

func nodeMatrix(n *gltf.Node) math.Mat4 {
	if n.Matrix != gltf.DefaultMatrix && n.Matrix != [16]float64{} {
		var m math.Mat4
		for i, v := range n.Matrix {
			m[i] = float32(v)
		}
		return m
	}

	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	return math.TRS(
		math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])},
		math.Quat{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])},
		math.Vec3{X: float32(s[0]), Y: float32(s[1]), Z: float32(s[2])},
	)
}

// gltfMesh merges the triangle primitives of a mesh into one world-space mesh.
func gltfMesh(doc *gltf.Document, nodeIdx, meshIdx int, world math.Mat4) (*scene.Mesh, error) {
	if meshIdx < 0 || meshIdx >= len(doc.Meshes) {
		return nil, fmt.Errorf("node %d: mesh %d out of range", nodeIdx, meshIdx)
	}
	src := doc.Meshes[meshIdx]

	var (
		vertices []math.Vec3
		indices  []uint32
	)
	for pi, prim := range src.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		acr, err := accessor(doc, posIdx)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d: %w", meshIdx, pi, err)
		}
		positions, err := modeler.ReadPosition(doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d: reading positions: %w", meshIdx, pi, err)
		}

		base := uint32(len(vertices))
		for _, p := range positions {
			vertices = append(vertices, world.TransformVec3(math.FromArray(p)))
		}

		if prim.Indices == nil {
			for i := range positions {
				indices = append(indices, base+uint32(i))
			}
			continue
		}
		acr, err = accessor(doc, *prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d: %w", meshIdx, pi, err)
		}
		idx, err := modeler.ReadIndices(doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d: reading indices: %w", meshIdx, pi, err)
		}
		for _, i := range idx {
			if int(i) >= len(positions) {
				return nil, fmt.Errorf("mesh %d primitive %d: index %d out of range", meshIdx, pi, i)
			}
			indices = append(indices, base+i)
		}
	}

	name := doc.Nodes[nodeIdx].Name
	if name == "" {
		name = src.Name
	}
	if name == "" {
		name = fmt.Sprintf("node%d", nodeIdx)
	}
	origin := world.TransformVec3(math.Vec3{})
	return scene.NewMesh(name, origin, vertices, indices), nil
}

var errNoAccessor = errors.New("accessor out of range")

func accessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("%w: %d", errNoAccessor, idx)
	}
	return doc.Accessors[idx], nil
}
