package models

import "time"

// FileUpload records an evidence file stored through the upload endpoint.
type FileUpload struct {
	ID           string    `gorm:"primaryKey;column:id;type:char(36)" json:"id"`
	OriginalName string    `gorm:"column:original_name;type:varchar(255)" json:"original_name"`
	ObjectKey    string    `gorm:"column:object_key;type:varchar(512)" json:"object_key"`
	URL          string    `gorm:"column:url;type:text" json:"url"`
	FileSize     int64     `gorm:"column:file_size" json:"file_size"`
	MimeType     string    `gorm:"column:mime_type;type:varchar(128)" json:"mime_type"`
	UploadedBy   string    `gorm:"column:uploaded_by;type:char(36)" json:"uploaded_by"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (FileUpload) TableName() string {
	return "file_uploads"
}

// Helper methods for file validation
func (f *FileUpload) IsValidImageType() bool {
	validTypes := []string{"image/jpeg", "image/png", "image/gif"}
	for _, validType := range validTypes {
		if f.MimeType == validType {
			return true
		}
	}
	return false
}

func (f *FileUpload) IsValidEvidenceType() bool {
	return f.IsValidImageType() || f.MimeType == "application/pdf"
}

func (f *FileUpload) GetFileSizeInMB() float64 {
	return float64(f.FileSize) / (1024 * 1024)
}

// AllModels lists every table managed by the migrate command.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&RefreshToken{},
		&Sekolah{},
		&Gtk{},
		&Talenta{},
		&ImportRun{},
		&FileUpload{},
	}
}
