package postgres

type leagueTableModel struct {
	ID   int64  `db:"id"`
	Code string `db:"code"`
	Name string `db:"name"`
}
