package content

import (
	"io/fs"
	"path"
	"strings"
)

const (
	crewImageDir         = "images/crew"
	PlaceholderCrewImage = "/" + crewImageDir + "/placeholder.png"
)

// ImageResolver maps crew names to portrait URLs served from an asset tree.
type ImageResolver struct {
	assets fs.FS
}

// NewImageResolver returns a resolver over assets. A nil assets FS resolves
// every name to the placeholder.
func NewImageResolver(assets fs.FS) *ImageResolver {
	return &ImageResolver{assets: assets}
}

var imageNameReplacer = strings.NewReplacer(" ", "_", "/", "_", "\\", "_")

// CrewImageFile is the portrait filename for a crew name: lower-cased with
// spaces replaced by underscores.
func CrewImageFile(name string) string {
	return imageNameReplacer.Replace(strings.ToLower(strings.TrimSpace(name))) + ".png"
}

func (r *ImageResolver) CrewImage(name string) string {
	if r == nil || r.assets == nil || strings.TrimSpace(name) == "" {
		return PlaceholderCrewImage
	}
	file := CrewImageFile(name)
	info, err := fs.Stat(r.assets, path.Join(crewImageDir, file))
	if err != nil || info.IsDir() {
		return PlaceholderCrewImage
	}
	return "/" + crewImageDir + "/" + file
}
