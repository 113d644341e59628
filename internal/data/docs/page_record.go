package docs

import (
	"crypto/sha256"
	"encoding/hex"

	"gorm.io/gorm"

	domaindocs "soliditydocs/app/internal/domain/docs"
)

// PageRow is the search index copy of a catalog page.
type PageRow struct {
	gorm.Model
	Route       string `gorm:"size:255;uniqueIndex:idx_pages_route;not null"`
	Version     string `gorm:"size:32;not null"`
	Series      string `gorm:"size:16;index:idx_pages_series;not null"`
	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"type:text;not null"`
	Body        string `gorm:"type:text;not null"`
	ContentHash string `gorm:"size:64;not null"`
}

// TableName defines the table name for the PageRow model.
func (PageRow) TableName() string {
	return "pages"
}

func contentHash(record domaindocs.PageRecord) string {
	sum := sha256.New()
	for _, field := range []string{record.Version, record.Title, record.Description, record.Body} {
		sum.Write([]byte(field))
		sum.Write([]byte{0})
	}
	return hex.EncodeToString(sum.Sum(nil))
}
