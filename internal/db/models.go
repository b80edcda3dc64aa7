package db

import "time"

// DictionaryEntry is a cached dictionary lookup. Rows are created on a
// cache miss and never updated afterwards.
type DictionaryEntry struct {
	ID           int64     `db:"id" json:"id" yaml:"id"`
	Word         string    `db:"word" json:"word" yaml:"word"`
	Language     string    `db:"language" json:"language" yaml:"language"`
	Definition   string    `db:"definition" json:"definition" yaml:"definition"`
	PartOfSpeech string    `db:"part_of_speech" json:"partOfSpeech" yaml:"partOfSpeech"`
	Examples     string    `db:"examples" json:"examples" yaml:"examples"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt" yaml:"createdAt"`
}
