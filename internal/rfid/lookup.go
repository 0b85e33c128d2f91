package rfid

// ReaderLookup maps a reader/card identifier to the account it charges.
// The sensor network does not carry account ids, so the binding is
// provisioned server-side.
type ReaderLookup interface {
	UserForReader(readerID string) (int64, bool)
}

// StaticReaderLookup is a fixed provisioning table with an optional
// fallback account for unknown readers.
type StaticReaderLookup struct {
	Readers map[string]int64
	// Default is used when the reader is not in the table; zero disables
	// the fallback.
	Default int64
}

func (l StaticReaderLookup) UserForReader(readerID string) (int64, bool) {
	if id, ok := l.Readers[readerID]; ok {
		return id, true
	}
	if l.Default != 0 {
		return l.Default, true
	}
	return 0, false
}
