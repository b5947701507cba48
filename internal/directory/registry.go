package directory

import (
	"fmt"

	"github.com/duoshoumiao/bilibilisearch/internal/models"
)

var registry = make(map[string]models.Directory)

// Register adds a new directory backend to the registry. It's called at startup.
func Register(d models.Directory) {
	info := d.GetInfo()
	if _, exists := registry[info.ID]; exists {
		// Panic is appropriate here as it's a developer error during setup.
		panic(fmt.Sprintf("directory with ID '%s' is already registered", info.ID))
	}
	registry[info.ID] = d
}

// Get returns a directory backend by its ID.
func Get(id string) (models.Directory, bool) {
	d, ok := registry[id]
	return d, ok
}

// GetAll returns a list of information for all registered backends.
func GetAll() []models.DirectoryInfo {
	var infos []models.DirectoryInfo
	for _, d := range registry {
		infos = append(infos, d.GetInfo())
	}
	return infos
}

// UnregisterAll clears the registry. Only used by tests.
func UnregisterAll() {
	registry = make(map[string]models.Directory)
}
