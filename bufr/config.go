package bufr

// Configuration controls how a Decoder resolves tables and how much detail
// it records per element. The zero value is not ready to use; call Valid
// (or DefaultConfig) first.
type Configuration struct {
	// TableDirectory is the filesystem root a TableProvider resolves
	// version-specific table files under. Defaults to "./tables".
	TableDirectory string

	// VerboseDescriptors, when true, makes the decoder record the key of
	// the element descriptor each value was decoded from in
	// Value.Descriptors. The sequence and replication descriptors the
	// element was expanded from are not recorded.
	VerboseDescriptors bool
}

const defaultTableDirectory = "./tables"

// DefaultConfig returns a Configuration with every field set to its
// default.
func DefaultConfig() Configuration {
	return Configuration{
		TableDirectory: defaultTableDirectory,
	}
}

// Valid fills in zero-valued fields with their defaults and returns the
// resulting Configuration. It currently cannot fail, but returns an error
// to leave room for future validation without an API break.
func (sf Configuration) Valid() (Configuration, error) {
	if sf.TableDirectory == "" {
		sf.TableDirectory = defaultTableDirectory
	}
	return sf, nil
}
