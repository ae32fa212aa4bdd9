package fatfs

// Test-only access to internals.

func (f *FS) Table() *Table { return f.table }

var (
	EncodeEntry  = encodeEntry
	DecodeEntry  = decodeEntry
	DataStartFor = dataStartFor
)

const (
	SuperblockSize = sbSize
	TableOffset    = tableOffset
)
