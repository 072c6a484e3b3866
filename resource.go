package mvsfs

// VirtualResource is one browsable entry: a location plus whatever metadata the
// listing source could provide. Missing metadata stays at its zero value.
type VirtualResource struct {
	Location            Location
	Size                int64  // bytes; 0 if unknown
	LastModified        int64  // epoch millis; 0 if unknown
	RecordFormat        string // RECFM, i.e. "FB"
	LogicalRecordLength int    // LRECL
}

// NewVirtualResource returns a resource without metadata.
func NewVirtualResource(loc Location) VirtualResource {
	return VirtualResource{Location: loc}
}

// Key is the deduplication key: the uppercase logical path.
func (r VirtualResource) Key() string {
	return r.Location.Key()
}

// DisplayName returns the name shown to the user.
func (r VirtualResource) DisplayName() string {
	return r.Location.DisplayName()
}

// OpenPath returns the logical path used to open or navigate to the resource.
func (r VirtualResource) OpenPath() string {
	return r.Location.LogicalPath()
}

// Kind returns the kind of the underlying location.
func (r VirtualResource) Kind() Kind {
	return r.Location.Kind()
}

// IsDirectory reports whether the resource can be navigated into.
func (r VirtualResource) IsDirectory() bool {
	return r.Location.IsDirectory()
}
