package server

import (
	"fmt"
	"mime"
	"sort"
)

// RegisterMIMETypes adds extension to Content-Type mappings used by the file
// server when inferring response types. Call it before serving.
func RegisterMIMETypes(types map[string]string) error {
	exts := make([]string, 0, len(types))
	for ext := range types {
		exts = append(exts, ext)
	}
	sort.Strings(exts)

	for _, ext := range exts {
		if err := mime.AddExtensionType(ext, types[ext]); err != nil {
			return fmt.Errorf("failed to register mime type %s for %s: %w", types[ext], ext, err)
		}
	}
	return nil
}
