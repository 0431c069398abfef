package uploadedfiles

import (
	"strconv"
	"time"

	"upload-manager/feature/users"
)

// UploadedFile records one object stored for a user. Fname is the object key.
type UploadedFile struct {
	ID           uint       `gorm:"column:id;primaryKey"`
	CreationDate time.Time  `gorm:"column:creation_date;type:datetime;autoCreateTime"`
	Fname        string     `gorm:"column:fname;type:varchar(512);uniqueIndex;not null"`
	Fsize        int64      `gorm:"column:fsize;type:bigint;not null"`
	OwnerID      uint       `gorm:"column:owner_id;not null;index"`
	Owner        users.User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
}

func (UploadedFile) TableName() string {
	return "uploaded_files"
}

// Resource is the JSON representation of an uploaded file.
type Resource struct {
	URL          string    `json:"url"`
	ID           uint      `json:"id"`
	CreationDate time.Time `json:"creation_date"`
	Fname        string    `json:"fname"`
	Fsize        int64     `json:"fsize"`
	Owner        string    `json:"owner"`
}

// URL returns the canonical URL of the uploaded file with the given id.
func URL(baseURL string, id uint) string {
	return baseURL + "/api/v1/uploadedfiles/" + strconv.FormatUint(uint64(id), 10) + "/"
}

// ToResource renders f for clients under baseURL.
func (f *UploadedFile) ToResource(baseURL string) Resource {
	return Resource{
		URL:          URL(baseURL, f.ID),
		ID:           f.ID,
		CreationDate: f.CreationDate,
		Fname:        f.Fname,
		Fsize:        f.Fsize,
		Owner:        users.URL(baseURL, f.OwnerID),
	}
}
