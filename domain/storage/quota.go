package storage

// QuotaInfo represents object store quota information
type QuotaInfo struct {
	TotalBytes     int64
	UsedBytes      int64
	AvailableBytes int64
}

// HasSpaceFor returns true if there's enough space for the given bytes
func (q QuotaInfo) HasSpaceFor(bytes int64) bool {
	return q.AvailableBytes >= bytes
}
