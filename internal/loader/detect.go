package loader

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
)

var (
	typeGLB     = filetype.NewType("glb", "model/gltf-binary")
	typeGLTF    = filetype.NewType("gltf", "model/gltf+json")
	typeBabylon = filetype.NewType("babylon", "application/babylon")
)

func init() {
	filetype.AddMatcher(typeGLB, matchGLB)
	filetype.AddMatcher(typeGLTF, matchGLTF)
	filetype.AddMatcher(typeBabylon, matchBabylon)
}

// sniffWindow bounds how much of a JSON document is scanned for keys.
const sniffWindow = 4096

func matchGLB(buf []byte) bool {
	return len(buf) >= 12 && bytes.HasPrefix(buf, []byte("glTF"))
}

func matchGLTF(buf []byte) bool {
	head, ok := jsonHead(buf)
	return ok && bytes.Contains(head, []byte(`"asset"`))
}

func matchBabylon(buf []byte) bool {
	head, ok := jsonHead(buf)
	return ok && !bytes.Contains(head, []byte(`"asset"`)) && bytes.Contains(head, []byte(`"meshes"`))
}

func jsonHead(buf []byte) ([]byte, bool) {
	trimmed := bytes.TrimLeft(buf, " \t\r\n\xef\xbb\xbf")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	if len(trimmed) > sniffWindow {
		trimmed = trimmed[:sniffWindow]
	}
	return trimmed, true
}

// Detect returns the format of a scene file.
func Detect(name string, data []byte) Format {
	kind, err := filetype.Match(data)
	if err == nil && kind != types.Unknown {
		switch kind {
		case typeGLB:
			return FormatGLB
		case typeGLTF:
			return FormatGLTF
		case typeBabylon:
			return FormatBabylon
		}
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".glb":
		return FormatGLB
	case ".gltf":
		return FormatGLTF
	case ".babylon":
		return FormatBabylon
	case ".obj":
		return FormatOBJ
	}
	return FormatUnknown
}
