package models

import (
	"time"
)

// Credential is an admin/password row used by login
type Credential struct {
	ID        int64     `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Password  string    `db:"password" json:"-"` // Password hash, not returned in JSON
	Categoria string    `db:"categoria" json:"categoria"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Frutto is a row of the frutti table. Nil fields are stored as NULL.
type Frutto struct {
	ID          int64   `db:"id" json:"id"`
	Nome        *string `db:"nome" json:"nome"`
	Descrizione *string `db:"descrizione" json:"descrizione"`
	Categoria   *string `db:"categoria" json:"categoria"`
}

// Values returns the column values in table column order
func (f Frutto) Values() []any {
	return []any{f.Nome, f.Descrizione, f.Categoria}
}

// Utente is a resident record
type Utente struct {
	ID          int64   `db:"id" json:"id"`
	Nome        *string `db:"nome" json:"nome"`
	Cognome     *string `db:"cognome" json:"cognome"`
	Stanza      *string `db:"stanza" json:"stanza"`
	Descrizione *string `db:"descrizione" json:"descrizione"`
}

func (u Utente) Values() []any {
	return []any{u.Nome, u.Cognome, u.Stanza, u.Descrizione}
}

// Appunto is a note
type Appunto struct {
	ID        int64   `db:"id" json:"id"`
	Titolo    *string `db:"titolo" json:"titolo"`
	Testo     *string `db:"testo" json:"testo"`
	Categoria *string `db:"categoria" json:"categoria"`
}

func (a Appunto) Values() []any {
	return []any{a.Titolo, a.Testo, a.Categoria}
}

// Photo is the database record of an uploaded image
type Photo struct {
	ID        int64     `db:"id" json:"id"`
	Filename  string    `db:"filename" json:"filename"`
	Path      string    `db:"path" json:"path"`
	Categoria *string   `db:"categoria" json:"categoria"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Snapshot is the stored excel_data row. Data holds the JSON-encoded rows.
type Snapshot struct {
	ID         int64     `db:"id" json:"id"`
	Data       string    `db:"data" json:"-"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploadedAt"`
}

// Row is one decoded spreadsheet row keyed by column header
type Row map[string]any
