package models

import "cinelog/proj/internal/storage/postgres"

type Models struct {
	Reviews *ReviewModel
}

func New(db *postgres.Storage) *Models {
	return &Models{
		Reviews: &ReviewModel{db.Conn},
	}
}
