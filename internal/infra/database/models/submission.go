package models

import (
	"time"
)

// Submission is one signed transaction handed to the wallet signer.
type Submission struct {
	ID          string    `json:"id" gorm:"primaryKey;type:text"`
	Operation   string    `json:"operation" gorm:"type:text;index"`
	Function    string    `json:"function" gorm:"type:text"`
	Arguments   string    `json:"arguments" gorm:"type:text"`
	Fingerprint string    `json:"fingerprint" gorm:"type:text;index"`
	Status      string    `json:"status" gorm:"type:text;not null"`
	TxHash      string    `json:"txHash" gorm:"type:text"`
	Error       string    `json:"error" gorm:"type:text"`
	CDate       time.Time `json:"cdate" gorm:"type:timestamp with time zone;autoCreateTime"`
	MDate       time.Time `json:"mdate" gorm:"type:timestamp with time zone;autoUpdateTime"`
}
