package enums

// CounterField names one column of the per-event daily analytics counters.
type CounterField string

const (
	CounterUploads  CounterField = "uploads"
	CounterViews    CounterField = "views"
	CounterQRScans  CounterField = "qr_scans"
	CounterApproved CounterField = "approved"
	CounterRejected CounterField = "rejected"
	CounterArchived CounterField = "archived"
)

func CounterFields() []CounterField {
	return []CounterField{
		CounterUploads,
		CounterViews,
		CounterQRScans,
		CounterApproved,
		CounterRejected,
		CounterArchived,
	}
}

func (f CounterField) Valid() bool {
	switch f {
	case CounterUploads, CounterViews, CounterQRScans, CounterApproved, CounterRejected, CounterArchived:
		return true
	default:
		return false
	}
}
