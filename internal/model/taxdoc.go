package model

import "time"

// TaxDoc is an uploaded exchange export. Its contents are stored encrypted and are not part
// of this struct.
type TaxDoc struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	FileName         string    `json:"fileName"`
	FileHash         string    `json:"fileHash"`
	Format           string    `json:"format"`
	TransactionCount int       `json:"transactionCount"`
	UploadedAt       time.Time `json:"uploadedAt"`
}
