package viewer

import (
	"fmt"
	"strings"

	"github.com/Faultbox/meshlens/internal/pipeline"
)

const appName = "MeshLens"

// formatTitle renders the stats line shown in the window title.
func formatTitle(st pipeline.Stats, fps, loading int) string {
	var b strings.Builder
	b.WriteString(appName)
	fmt.Fprintf(&b, " - %d meshes, %d markers", st.Meshes, st.Markers)
	if st.Selected != "" {
		fmt.Fprintf(&b, " | %s: %d inside, %d outside", st.Selected, st.Inside, st.Outside)
	}
	if loading > 0 {
		fmt.Fprintf(&b, " | loading %d", loading)
	}
	fmt.Fprintf(&b, " | %d FPS", fps)
	return b.String()
}
