package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier, accepted by New
	Name        string `json:"name"`        // Scene name
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Type        string `json:"type"`        // "builtin" or "texture"
	FilePath    string `json:"filePath"`    // Path to the image (texture type only)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

const builtInGroup = "Built-in Scenes"

var builtInScenes = []SceneInfo{
	{
		ID:          "cutout",
		Name:        "Cutout Ground",
		DisplayName: "Cutout Ground",
		Description: "Receding ground of alpha-cutout discs under a glossy coat",
		Group:       builtInGroup,
		Type:        "builtin",
	},
	{
		ID:          "wall",
		Name:        "Cutout Wall",
		DisplayName: "Cutout Wall",
		Description: "Camera-facing cutout quad with a constant pixel footprint",
		Group:       builtInGroup,
		Type:        "builtin",
	},
	{
		ID:          "checker",
		Name:        "Checker Ground",
		DisplayName: "Checker Ground",
		Description: "Opaque checkerboard showing mip selection with a gradient-tinted specular layer",
		Group:       builtInGroup,
		Type:        "builtin",
	},
	{
		ID:          "uv-debug",
		Name:        "UV Debug",
		DisplayName: "UV Debug",
		Description: "Unlit ground displaying its texture coordinates",
		Group:       builtInGroup,
		Type:        "builtin",
	},
}

var textureExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

// ListTextureScenes scans dir for images; each becomes a cutout scene using the image
// as its base color. A missing directory yields no scenes.
func ListTextureScenes(dir string) ([]SceneInfo, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return []SceneInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan texture directory: %w", err)
	}

	var scenes []SceneInfo
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || !textureExtensions[ext] {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		scenes = append(scenes, SceneInfo{
			ID:          texturePrefix + name,
			Name:        titleCase(name),
			DisplayName: titleCase(name),
			Description: "Cutout ground textured with " + entry.Name(),
			Group:       "Textures",
			Type:        "texture",
			FilePath:    filepath.Join(dir, entry.Name()),
		})
	}

	// Sort scenes by display name
	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})
	return scenes, nil
}

// findTexture returns the image in dir whose name without extension is name
func findTexture(dir, name string) (string, error) {
	scenes, err := ListTextureScenes(dir)
	if err != nil {
		return "", err
	}
	for _, s := range scenes {
		if s.ID == texturePrefix+name {
			return s.FilePath, nil
		}
	}
	return "", fmt.Errorf("%w: no texture %q in %s", ErrUnknownScene, name, dir)
}

// ListAllScenes returns both built-in and texture scenes, grouped by category
func ListAllScenes(textureDir string) (ScenesResponse, error) {
	var response ScenesResponse

	textureScenes, err := ListTextureScenes(textureDir)
	if err != nil {
		return response, fmt.Errorf("failed to list texture scenes: %w", err)
	}

	// Group scenes by their Group field
	groupMap := make(map[string][]SceneInfo)
	for _, s := range append(append([]SceneInfo{}, builtInScenes...), textureScenes...) {
		groupMap[s.Group] = append(groupMap[s.Group], s)
	}

	// Create ordered groups (Built-in first, then alphabetical)
	var groupNames []string
	for groupName := range groupMap {
		if groupName != builtInGroup {
			groupNames = append(groupNames, groupName)
		}
	}
	sort.Strings(groupNames)

	response.Groups = append(response.Groups, SceneGroup{Name: builtInGroup, Scenes: groupMap[builtInGroup]})
	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{
			Name:   groupName,
			Scenes: groupMap[groupName],
		})
	}

	return response, nil
}

// titleCase converts a filename-style string to title case
// e.g., "oak-leaves" -> "Oak Leaves"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}
