// Package targetpath implements handler.TargetPathFactory by placing
// every upload as a single file directly under a configured root
// directory, named by its identifier.
package targetpath

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fileup/fileupd/pkg/handler"
)

// FlatDirectory stores every upload as filepath.Join(Root, id). The root
// directory is checked for existence at construction time; FlatDirectory
// never creates it.
type FlatDirectory struct {
	Root string
}

// New creates a FlatDirectory rooted at root, failing if root does not
// exist or is not a directory.
func New(root string) (*FlatDirectory, error) {
	stat, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("targetpath: %w", err)
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("targetpath: %s is not a directory", root)
	}
	return &FlatDirectory{Root: root}, nil
}

func (f *FlatDirectory) Path(id string, meta handler.MetaData) (string, error) {
	return filepath.Join(f.Root, id), nil
}
