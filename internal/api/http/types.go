package http

import "github.com/GriffinCanCode/LogViewer/backend/internal/navigation"

// fsItem is the wire form of a navigation.FsEntry.
type fsItem struct {
	Path             string `json:"path"`
	Name             string `json:"name"`
	Directory        bool   `json:"directory"`
	Type             string `json:"type"`
	Size             int64  `json:"size"`
	ModificationTime int64  `json:"modificationTime"`
}

type listResponse struct {
	Path     string   `json:"path"`
	Children []fsItem `json:"children"`
}

func toItems(entries []navigation.FsEntry) []fsItem {
	items := make([]fsItem, len(entries))
	for i, e := range entries {
		items[i] = fsItem{
			Path:             e.Path(),
			Name:             e.Name(),
			Directory:        e.IsDirectory(),
			Type:             string(e.Type()),
			Size:             e.Size(),
			ModificationTime: e.ModificationTime(),
		}
	}
	return items
}
