package postgres

type expertTableModel struct {
	UserID   int64  `db:"user_id"`
	NickName string `db:"nick_name"`
}
