package adapters

// BuiltInSourceType names a source type shipped with mvsfs.
type BuiltInSourceType = string

const (
	FTPSourceType     BuiltInSourceType = "ftp"
	CatalogSourceType BuiltInSourceType = "catalog"
)

// RegisterBuiltins registers all built-in providers on r by default
// or only the specific ones if types are provided.
func RegisterBuiltins(r *Registry, types ...BuiltInSourceType) {
	if len(types) == 0 {
		types = []BuiltInSourceType{FTPSourceType, CatalogSourceType}
	}

	for _, t := range types {
		switch t {
		case FTPSourceType:
			RegisterFTP(r)
		case CatalogSourceType:
			RegisterCatalog(r)
		}
	}
}
