package models

import "github.com/jackc/pgx/v5/pgtype"

type SoftwareRequest struct {
	ID                int64
	SoftwareName      string
	SoftwareVersion   string
	LabID             string
	RequestDate       pgtype.Date
	Status            string
	RequesterIdentity string
}
