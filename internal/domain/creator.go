package domain

import (
	"strings"

	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

// Creator labels used when no folder name identifies a creator.
const (
	CreatorRootAsset   = "N/A (Root Asset)"
	CreatorGenericPath = "N/A (Generic Path)"
)

var genericFolders = func() map[string]struct{} {
	names := []string{
		"Assets", "Materials", "Textures", "Models", "Scripts", "Resources",
		"Prefabs", "Animations", "Audio", "Shaders", "Plugins", "Editor",
		"Gizmos", "Standard Assets", "Editor Default Resources", "StreamingAssets",
		"VRCA", "VRChat", "Common", "Packages",
		"Art", "Scenes", "Settings", "ThirdParty", "Tools",
	}

	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[strings.ToLower(name)] = struct{}{}
	}

	return set
}()

// SuggestCreator guesses the creator or package of a resource from the first folder
// below the top-level folder that is not a generic folder name.
func SuggestCreator(path m.Path) string {
	parts := strings.Split(string(path), "/")
	if len(parts) <= 1 {
		return CreatorRootAsset
	}

	for _, folder := range parts[1 : len(parts)-1] {
		if _, generic := genericFolders[strings.ToLower(folder)]; !generic {
			return folder
		}
	}

	return CreatorGenericPath
}
