// internal/sector/model.go
//
// CRM geography records and the partial update produced by the edit dialog.
//
// Context
// -------
// A sector is a named sales territory that belongs to one municipality.
// Municipalities belong to departments, giving a two-level hierarchy the
// dialog walks with two selects.  Rows mirror the `sector`, `municipality`,
// and `department` tables created by the embedded migrations.
//
// Notes
// -----
//   - Nullable columns map to pointers so sqlx can scan NULL directly.
//   - Patch is the only value the dialog hands upstream.  Its JSON form keeps
//     `description` as an explicit null when the user cleared it.
package sector

import "time"

// Sector mirrors one row in the `sector` table.
type Sector struct {
	ID             int64     `db:"id"              json:"id"`
	Name           string    `db:"name"            json:"name"`
	Description    *string   `db:"description"     json:"description"`
	MunicipalityID *int64    `db:"municipality_id" json:"municipalityId"`
	UpdatedAt      time.Time `db:"updated_at"      json:"updatedAt"`
}

// Municipality is a read-only lookup row.
type Municipality struct {
	ID           int64  `db:"id"            json:"id"`
	Name         string `db:"name"          json:"name"`
	DepartmentID int64  `db:"department_id" json:"departmentId"`
}

// Department is a read-only lookup row.
type Department struct {
	ID   int64  `db:"id"   json:"id"`
	Name string `db:"name" json:"name"`
}

// Patch is the partial sector update submitted by the dialog.
type Patch struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Description    *string `json:"description"`
	MunicipalityID int64   `json:"municipalityId"`
}
