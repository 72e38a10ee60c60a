package meeting

import (
	"time"
)

// Meeting is one uploaded customer-meeting row. RepName, Month and Week come
// from the upload request, not the file, so a sheet is always filed under
// one rep and one reporting period.
type Meeting struct {
	ID             int64     `json:"id" gorm:"primaryKey"`
	RepName        string    `json:"repName" gorm:"column:rep_name;not null"`
	CustomerName   string    `json:"customerName" gorm:"column:customer_name;not null"`
	PrimaryContact string    `json:"primaryContact" gorm:"column:primary_contact"`
	MeetingPurpose string    `json:"meetingPurpose" gorm:"column:meeting_purpose"`
	MeetingOutcome string    `json:"meetingOutcome" gorm:"column:meeting_outcome"`
	Month          string    `json:"month" gorm:"not null"`
	Week           string    `json:"week" gorm:"not null"`
	Year           int       `json:"year" gorm:"not null"`
	CreatedAt      time.Time `json:"createdAt" gorm:"column:created_at"`
}

func (Meeting) TableName() string {
	return "meetings"
}

// ListFilter narrows the meeting listing.
type ListFilter struct {
	RepName string
	Month   string
	Week    string
	Year    int
}

// UploadResult reports a CSV import.
type UploadResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}
