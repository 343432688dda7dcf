package dbmodels

type Media struct {
	BaseOrgModel
	WorkOrderID *string `gorm:"index" json:"work_order_id,omitempty"`
	EntryID     *string `gorm:"index" json:"entry_id,omitempty"`
	FileName    string  `json:"file_name"`
	ContentType string  `json:"content_type"`
	Size        int64   `json:"size"`
	// BucketKey is the object key in the S3 bucket.
	BucketKey  string `json:"-"`
	UploadedBy string `json:"uploaded_by"`
}
